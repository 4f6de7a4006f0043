package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsline/opsline/internal/agent/tools"
)

// Manager connects the catalog's servers, discovers their tools and installs
// them into the registry under the mcp namespace. Connection failures are
// logged and skipped; one dead server never blocks startup.
type Manager struct {
	catalog  Catalog
	registry *tools.Registry
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*sdkmcp.ClientSession
}

func NewManager(catalog Catalog, registry *tools.Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		catalog:  catalog,
		registry: registry,
		logger:   logger,
		sessions: make(map[string]*sdkmcp.ClientSession),
	}
}

// Bootstrap connects every enabled server and replaces the mcp namespace
// with whatever was discovered.
func (m *Manager) Bootstrap(ctx context.Context) {
	discovered := []tools.Tool{}
	for _, cfg := range m.catalog.Servers {
		if !cfg.Enabled {
			continue
		}
		serverTools, err := m.discoverServer(ctx, cfg)
		if err != nil {
			m.logger.Warn("mcp discovery failed", "server_id", cfg.ID, "error", err)
			continue
		}
		m.logger.Info("mcp discovery succeeded", "server_id", cfg.ID, "tools", len(serverTools))
		discovered = append(discovered, serverTools...)
	}
	if m.registry != nil {
		m.registry.ReplaceNamespace(Namespace, discovered)
	}
}

func (m *Manager) discoverServer(ctx context.Context, cfg ServerConfig) ([]tools.Tool, error) {
	session, err := connectSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if previous, ok := m.sessions[cfg.ID]; ok {
		_ = previous.Close()
	}
	m.sessions[cfg.ID] = session
	m.mu.Unlock()

	rawTools := []*sdkmcp.Tool{}
	for item, iterErr := range session.Tools(ctx, nil) {
		if iterErr != nil {
			return nil, iterErr
		}
		if item == nil {
			continue
		}
		rawTools = append(rawTools, item)
	}

	names := make([]string, 0, len(rawTools))
	for _, item := range rawTools {
		names = append(names, item.Name)
	}
	nameMap := registeredNames(cfg.ID, names)

	imported := make([]tools.Tool, 0, len(rawTools))
	for _, item := range rawTools {
		schema := `{"type":"object"}`
		if item.InputSchema != nil {
			if schemaBytes, err := json.Marshal(item.InputSchema); err == nil {
				schema = string(schemaBytes)
			}
		}
		imported = append(imported, &remoteTool{
			manager:        m,
			serverID:       cfg.ID,
			toolName:       item.Name,
			registeredName: nameMap[item.Name],
			description:    strings.TrimSpace(item.Description),
			schema:         schema,
		})
	}
	return imported, nil
}

func (m *Manager) session(serverID string) (*sdkmcp.ClientSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[serverID]
	return session, ok
}

// Close tears down all sessions and removes the imported tools.
func (m *Manager) Close() error {
	if m.registry != nil {
		m.registry.RemoveNamespace(Namespace)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for id, session := range m.sessions {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.sessions, id)
	}
	return firstErr
}

// remoteTool adapts one discovered MCP tool to the registry interface.
type remoteTool struct {
	manager        *Manager
	serverID       string
	toolName       string
	registeredName string
	description    string
	schema         string
}

func (t *remoteTool) Name() string { return t.registeredName }

func (t *remoteTool) Description() string {
	if t.description == "" {
		return fmt.Sprintf("Tool %s from MCP server %s.", t.toolName, t.serverID)
	}
	return t.description
}

func (t *remoteTool) ParametersSchema() string { return t.schema }

func (t *remoteTool) Execute(ctx context.Context, rawArgs json.RawMessage) (string, error) {
	session, ok := t.manager.session(t.serverID)
	if !ok {
		return "", fmt.Errorf("mcp server %s is not connected", t.serverID)
	}
	var args map[string]any
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}
	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: t.toolName, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call mcp tool %s: %w", t.toolName, err)
	}
	message := flattenCallResult(result)
	if result != nil && result.IsError {
		return "", fmt.Errorf("mcp tool %s failed: %s", t.toolName, message)
	}
	return message, nil
}

func flattenCallResult(result *sdkmcp.CallToolResult) string {
	if result == nil {
		return "(empty result)"
	}
	parts := []string{}
	for _, content := range result.Content {
		parts = append(parts, flattenContent(content))
	}
	if len(parts) == 0 && result.StructuredContent != nil {
		if raw, err := json.Marshal(result.StructuredContent); err == nil {
			parts = append(parts, string(raw))
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		text = "(empty result)"
	}
	if len(text) > 8000 {
		text = text[:8000] + "..."
	}
	return text
}

func flattenContent(content sdkmcp.Content) string {
	switch value := content.(type) {
	case *sdkmcp.TextContent:
		return strings.TrimSpace(value.Text)
	case *sdkmcp.ImageContent:
		return fmt.Sprintf("[image mime=%s bytes=%d]", value.MIMEType, len(value.Data))
	case *sdkmcp.AudioContent:
		return fmt.Sprintf("[audio mime=%s bytes=%d]", value.MIMEType, len(value.Data))
	case *sdkmcp.ResourceLink:
		return fmt.Sprintf("[resource_link %s %s]", strings.TrimSpace(value.Name), strings.TrimSpace(value.URI))
	default:
		if raw, err := json.Marshal(content); err == nil {
			return string(raw)
		}
		return "[content]"
	}
}

// registeredNames maps discovered tool names to namespaced registry names,
// disambiguating collisions after sanitization.
func registeredNames(serverID string, toolNames []string) map[string]string {
	result := make(map[string]string, len(toolNames))
	seen := map[string]struct{}{}
	for _, name := range toolNames {
		candidate := "mcp_" + sanitizeName(serverID) + "__" + sanitizeName(name)
		base := candidate
		for i := 2; ; i++ {
			if _, exists := seen[candidate]; !exists {
				break
			}
			candidate = fmt.Sprintf("%s_%d", base, i)
		}
		seen[candidate] = struct{}{}
		result[name] = candidate
	}
	return result
}

func sanitizeName(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	builder := strings.Builder{}
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			builder.WriteRune(r)
			continue
		}
		builder.WriteByte('_')
	}
	result := strings.Trim(builder.String(), "_")
	if result == "" {
		result = "tool"
	}
	return result
}
