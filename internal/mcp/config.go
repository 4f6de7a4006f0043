// Package mcp imports tools from external Model Context Protocol servers
// into the fallback model's registry.
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	DefaultHTTPTimeoutSeconds = 30

	TransportStreamableHTTP = "streamable_http"
	TransportSSE            = "sse"
)

// Namespace is the registry namespace all imported tools live under, so a
// reconnect can swap them wholesale without touching builtin tools.
const Namespace = "mcp"

type Catalog struct {
	SchemaVersion string         `json:"schema_version"`
	Servers       []ServerConfig `json:"servers"`
}

type ServerConfig struct {
	ID        string            `json:"id"`
	Enabled   bool              `json:"enabled"`
	Transport TransportConfig   `json:"transport"`
	Headers   map[string]string `json:"headers,omitempty"`
	Timeout   int               `json:"timeout_seconds,omitempty"`
}

type TransportConfig struct {
	Type     string `json:"type"`
	Endpoint string `json:"endpoint"`
}

// LoadCatalog reads and validates the server catalog. A missing file is not
// an error: MCP import is optional.
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Catalog{}, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Catalog{}, nil
	}
	if err != nil {
		return Catalog{}, fmt.Errorf("read mcp catalog: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("parse mcp catalog: %w", err)
	}
	seen := map[string]struct{}{}
	for i, server := range catalog.Servers {
		id := strings.TrimSpace(server.ID)
		if id == "" {
			return Catalog{}, fmt.Errorf("mcp catalog server %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return Catalog{}, fmt.Errorf("mcp catalog has duplicate server id %q", id)
		}
		seen[id] = struct{}{}
		if !server.Enabled {
			continue
		}
		switch server.Transport.Type {
		case TransportStreamableHTTP, TransportSSE:
		default:
			return Catalog{}, fmt.Errorf("mcp server %s has unsupported transport %q", id, server.Transport.Type)
		}
		if strings.TrimSpace(server.Transport.Endpoint) == "" {
			return Catalog{}, fmt.Errorf("mcp server %s has no endpoint", id)
		}
	}
	return catalog, nil
}
