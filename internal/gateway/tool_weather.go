package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// WeatherTool implements tools.Tool with a canned conditions table. It exists
// so the fallback can answer small-talk without a second external dependency;
// the reply is explicit about being indicative only.
type WeatherTool struct{}

func NewWeatherTool() *WeatherTool { return &WeatherTool{} }

var weatherTable = map[string]string{
	"london":        "overcast, 14°C with light drizzle",
	"berlin":        "partly cloudy, 17°C",
	"new york":      "sunny, 22°C",
	"tokyo":         "humid, 26°C with scattered showers",
	"sydney":        "clear, 19°C",
	"san francisco": "foggy morning, 16°C",
}

func (t *WeatherTool) Name() string { return "weather" }

func (t *WeatherTool) Description() string {
	return "Get indicative weather conditions for a major city."
}

func (t *WeatherTool) ParametersSchema() string {
	return `{"type":"object","properties":{"city":{"type":"string","description":"City name, e.g. London."}},"required":["city"]}`
}

func (t *WeatherTool) Execute(_ context.Context, rawArgs json.RawMessage) (string, error) {
	var args struct {
		City string `json:"city"`
	}
	if err := strictDecodeArgs(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	city := strings.ToLower(strings.TrimSpace(args.City))
	if city == "" {
		return "", fmt.Errorf("city is required")
	}
	if conditions, ok := weatherTable[city]; ok {
		return fmt.Sprintf("Indicative conditions for %s: %s.", args.City, conditions), nil
	}
	return fmt.Sprintf("No conditions on file for %s. Try a major city like London or Tokyo.", args.City), nil
}
