package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CurrentTimeTool implements tools.Tool for reporting the current time.
type CurrentTimeTool struct {
	now func() time.Time
}

func NewCurrentTimeTool() *CurrentTimeTool {
	return &CurrentTimeTool{now: time.Now}
}

func (t *CurrentTimeTool) Name() string { return "current_time" }

func (t *CurrentTimeTool) Description() string {
	return "Get the current date and time, optionally in a named IANA timezone."
}

func (t *CurrentTimeTool) ParametersSchema() string {
	return `{"type":"object","properties":{"timezone":{"type":"string","description":"IANA timezone name, e.g. Europe/Berlin. Defaults to UTC."}}}`
}

func (t *CurrentTimeTool) Execute(_ context.Context, rawArgs json.RawMessage) (string, error) {
	var args struct {
		Timezone string `json:"timezone"`
	}
	if err := strictDecodeArgs(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	location := time.UTC
	if name := strings.TrimSpace(args.Timezone); name != "" {
		loaded, err := time.LoadLocation(name)
		if err != nil {
			return "", fmt.Errorf("unknown timezone %q", name)
		}
		location = loaded
	}
	return t.now().In(location).Format("Monday, 2 January 2006 15:04:05 MST"), nil
}
