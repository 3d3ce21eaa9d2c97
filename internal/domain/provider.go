package domain

import (
	"context"
	"encoding/json"
)

// LocalProvider serves the built-in tools that need no backend.
type LocalProvider interface {
	ListTools() []ToolDescriptor
	Execute(ctx context.Context, name string, params map[string]any) (any, error)
}

// CatalogFetcher retrieves a backend's raw tool catalog.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, svc ServiceDescriptor) ([]RawTool, error)
}

// Invoker posts an execution request to a backend URL.
type Invoker interface {
	Invoke(ctx context.Context, serviceID, url string, params map[string]any) (json.RawMessage, error)
}

// ToolResolver resolves a registry key to its current descriptor.
type ToolResolver interface {
	Lookup(name string) (ToolDescriptor, bool)
}
