// Package openai implements llm.ToolCaller against an OpenAI-compatible
// chat-completions endpoint with function calling.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/opsline/opsline/internal/agent/tools"
	"github.com/opsline/opsline/internal/llm"
	"github.com/opsline/opsline/internal/session"
)

type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxToolRounds int
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxToolRounds < 1 {
		cfg.MaxToolRounds = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type chatMessage struct {
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	ToolCalls  []rawToolCall   `json:"tool_calls,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	Name       string          `json:"name,omitempty"`
}

type rawToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string        `json:"content"`
			ToolCalls []rawToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Complete runs a bounded function-calling loop: the model may request
// registry tools, each request is executed and fed back, and the final text
// reply plus the invocation trace is returned. Transport failures wrap
// llm.ErrUnavailable so the caller can distinguish connectivity problems.
func (c *Client) Complete(ctx context.Context, turns []session.Turn, registry *tools.Registry) (string, []llm.ToolCall, error) {
	if requiresAPIKey(c.cfg.BaseURL) && strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", nil, fmt.Errorf("%w: missing API key for %s", llm.ErrUnavailable, c.cfg.BaseURL)
	}

	messages := messagesFromTurns(turns)
	specs := toolSpecs(registry)
	trace := []llm.ToolCall{}

	for round := 0; round <= c.cfg.MaxToolRounds; round++ {
		response, err := c.complete(ctx, messages, specs)
		if err != nil {
			return "", trace, err
		}
		if len(response.Choices) == 0 {
			return "", trace, fmt.Errorf("%w: response returned no choices", llm.ErrUnavailable)
		}
		message := response.Choices[0].Message
		if len(message.ToolCalls) == 0 || round == c.cfg.MaxToolRounds {
			return strings.TrimSpace(message.Content), trace, nil
		}

		messages = append(messages, chatMessage{
			Role:      "assistant",
			Content:   message.Content,
			ToolCalls: message.ToolCalls,
		})
		for _, call := range message.ToolCalls {
			record := llm.ToolCall{
				Name: call.Function.Name,
				Args: call.Function.Arguments,
			}
			output, execErr := registry.ExecuteTool(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			if execErr != nil {
				record.Err = execErr.Error()
				output = "tool error: " + execErr.Error()
				c.logger.Warn("tool execution failed", "tool", call.Function.Name, "error", execErr)
			} else {
				record.Output = output
			}
			trace = append(trace, record)
			messages = append(messages, chatMessage{
				Role:       "tool",
				Content:    output,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
		}
	}
	return "", trace, fmt.Errorf("%w: tool loop did not converge", llm.ErrUnavailable)
}

func (c *Client) complete(ctx context.Context, messages []chatMessage, specs []toolSpec) (chatResponse, error) {
	payload := map[string]any{
		"model":    c.cfg.Model,
		"messages": messages,
	}
	if len(specs) > 0 {
		payload["tools"] = specs
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return chatResponse{}, fmt.Errorf("marshal chat request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return chatResponse{}, err
	}
	if apiKey := strings.TrimSpace(c.cfg.APIKey); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return chatResponse{}, fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return chatResponse{}, fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Error("chat completion failed", "status", res.StatusCode, "body", compact(string(respBody)))
		return chatResponse{}, fmt.Errorf("%w: completion failed with status %d", llm.ErrUnavailable, res.StatusCode)
	}

	var response chatResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return chatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	return response, nil
}

func messagesFromTurns(turns []session.Turn) []chatMessage {
	messages := make([]chatMessage, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case session.RoleSystem:
			messages = append(messages, chatMessage{Role: "system", Content: turn.Content})
		case session.RoleAssistant:
			messages = append(messages, chatMessage{Role: "assistant", Content: turn.Content})
		case session.RoleTool:
			// Persisted tool turns lack call ids, so they travel as
			// assistant-side context notes.
			messages = append(messages, chatMessage{Role: "assistant", Content: "[tool result] " + turn.Content})
		default:
			messages = append(messages, chatMessage{Role: "user", Content: turn.Content})
		}
	}
	return messages
}

func toolSpecs(registry *tools.Registry) []toolSpec {
	if registry == nil {
		return nil
	}
	list := registry.List()
	specs := make([]toolSpec, 0, len(list))
	for _, tool := range list {
		parameters := json.RawMessage(tool.ParametersSchema())
		if !json.Valid(parameters) {
			parameters = json.RawMessage(`{"type":"object"}`)
		}
		specs = append(specs, toolSpec{
			Type: "function",
			Function: functionSpec{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  parameters,
			},
		})
	}
	return specs
}

func compact(input string) string {
	clean := strings.Join(strings.Fields(strings.TrimSpace(input)), " ")
	if len(clean) > 500 {
		return clean[:500] + "..."
	}
	return clean
}

func requiresAPIKey(baseURL string) bool {
	// Local endpoints (ollama and friends) typically run keyless.
	lower := strings.ToLower(baseURL)
	return !strings.Contains(lower, "localhost") && !strings.Contains(lower, "127.0.0.1") && !strings.Contains(lower, "ollama")
}
