package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// strictDecodeArgs decodes tool arguments rejecting unknown fields, so the
// model learns the exact schema instead of silently losing typos.
func strictDecodeArgs(rawArgs json.RawMessage, target any) error {
	if len(bytes.TrimSpace(rawArgs)) == 0 {
		rawArgs = json.RawMessage(`{}`)
	}
	decoder := json.NewDecoder(bytes.NewReader(rawArgs))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
