package tools

import (
	"context"
	"encoding/json"
)

// Tool is one named capability the conversational fallback can invoke.
type Tool interface {
	// Name returns the unique identifier for the tool (e.g., "current_time").
	Name() string

	// Description explains what the tool does, for the model's tool catalog.
	Description() string

	// ParametersSchema returns a JSON schema describing the expected input.
	ParametersSchema() string

	// Execute runs the tool with raw JSON arguments and returns a result string.
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// ArgumentValidator is an optional interface for strict argument validation.
// When a tool implements it, the registry validates arguments before Execute.
type ArgumentValidator interface {
	ValidateArgs(input json.RawMessage) error
}
