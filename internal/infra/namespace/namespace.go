// Package namespace maps backend tool names into the gateway's flat key space.
package namespace

import (
	"toolgate/internal/domain"
)

// QualifiedName builds the registry key for a backend tool.
func QualifiedName(serviceID, originalName string) string {
	return serviceID + domain.NameSeparator + originalName
}

// Qualify rewrites a backend tool under its service namespace and stamps the
// provenance metadata. Provenance keys always override backend-supplied ones.
func Qualify(serviceID string, raw domain.RawTool) domain.ToolDescriptor {
	desc := raw.Clone()
	if desc.Metadata == nil {
		desc.Metadata = make(map[string]any, 2)
	}
	if len(desc.Parameters) == 0 {
		desc.Parameters = nil
	}
	desc.Name = QualifiedName(serviceID, raw.Name)
	desc.Metadata[domain.MetadataServiceID] = serviceID
	desc.Metadata[domain.MetadataOriginalName] = raw.Name
	return desc
}

// Provenance reads back the backend identity of a descriptor. remote is false
// for local tools or when either key is missing or not a non-empty string.
func Provenance(desc domain.ToolDescriptor) (serviceID, originalName string, remote bool) {
	serviceID, ok := stringMeta(desc.Metadata, domain.MetadataServiceID)
	if !ok {
		return "", "", false
	}
	originalName, ok = stringMeta(desc.Metadata, domain.MetadataOriginalName)
	if !ok {
		return "", "", false
	}
	return serviceID, originalName, true
}

func stringMeta(meta map[string]any, key string) (string, bool) {
	if meta == nil {
		return "", false
	}
	value, ok := meta[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
