package app

import "golang.org/x/mod/semver"

// Version is the semantic version of toolgate, set at build time via -ldflags.
var Version = "dev"

// Build is the git commit hash or build identifier, set at build time via -ldflags.
var Build = "unknown"

// VersionString renders the version for display. Valid semantic versions are
// canonicalized; anything else is shown as-is.
func VersionString() string {
	v := Version
	if v != "" && v[0] != 'v' {
		v = "v" + v
	}
	if canonical := semver.Canonical(v); canonical != "" {
		v = canonical
	} else {
		v = Version
	}
	if Build == "" || Build == "unknown" {
		return v
	}
	return v + " (" + Build + ")"
}
