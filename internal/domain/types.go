package domain

import (
	"errors"
	"fmt"
	"time"
)

// Metadata keys recorded on remote-origin tools.
const (
	MetadataServiceID    = "serviceId"
	MetadataOriginalName = "originalName"
)

// NameSeparator joins a service id and a backend tool name.
const NameSeparator = "."

// ToolPlaceholder is replaced with the unqualified tool name in execution path templates.
const ToolPlaceholder = "{tool}"

// ServiceDescriptor describes one remote backend. It is immutable after load.
type ServiceDescriptor struct {
	ID                    string `json:"id"`
	BaseURL               string `json:"url"`
	CatalogPath           string `json:"toolsEndpoint"`
	ExecutionPathTemplate string `json:"executionEndpoint"`
	Enabled               bool   `json:"enabled"`
}

type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Schema      any    `json:"schema,omitempty"`
}

type ToolReturn struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Schema      any    `json:"schema,omitempty"`
}

// ToolDescriptor is a tool as exposed by the gateway. Name is the registry key:
// qualified for remote tools, bare for local ones.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  []ToolParameter `json:"parameters,omitempty"`
	Returns     *ToolReturn     `json:"returns,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// Clone copies the descriptor's parameters, return shape and metadata map so
// the copy can be modified without touching the original. Schema values are
// shared.
func (d ToolDescriptor) Clone() ToolDescriptor {
	out := d
	if d.Parameters != nil {
		out.Parameters = append(make([]ToolParameter, 0, len(d.Parameters)), d.Parameters...)
	}
	if d.Returns != nil {
		returns := *d.Returns
		out.Returns = &returns
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for key, value := range d.Metadata {
			out.Metadata[key] = value
		}
	}
	return out
}

// RawTool is the unqualified tool shape reported by a backend catalog endpoint.
type RawTool = ToolDescriptor

// RefreshReport summarizes one refresh cycle.
type RefreshReport struct {
	Revision       uint64
	ETag           string
	Tools          int
	LocalTools     int
	RemoteTools    int
	FailedServices []string
	Duration       time.Duration
}

// SnapshotInfo describes the registry view currently served to readers.
type SnapshotInfo struct {
	Revision    uint64    `json:"revision"`
	ETag        string    `json:"etag"`
	RefreshedAt time.Time `json:"refreshedAt"`
	Tools       int       `json:"tools"`
	Ready       bool      `json:"ready"`
}

var ErrToolNotFound = errors.New("tool not found")
var ErrServiceNotFound = errors.New("service not found")
var ErrInvalidParams = errors.New("invalid parameters")
var ErrInvalidConfig = errors.New("invalid configuration")
var ErrBackendUnavailable = errors.New("backend unavailable")
var ErrBackendRejected = errors.New("backend rejected request")
var ErrMalformedResponse = errors.New("malformed backend response")

// FetchError reports a catalog fetch failure for one backend.
type FetchError struct {
	ServiceID string
	Cause     error
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("fetch catalog from %q: %v", e.ServiceID, e.Cause)
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
