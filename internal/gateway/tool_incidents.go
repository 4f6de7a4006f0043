package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opsline/opsline/internal/incident"
)

// SearchIncidentsTool implements tools.Tool so the fallback model can answer
// free-form incident questions the direct routes did not claim.
type SearchIncidentsTool struct {
	cache Cache
}

func NewSearchIncidentsTool(cache Cache) *SearchIncidentsTool {
	return &SearchIncidentsTool{cache: cache}
}

func (t *SearchIncidentsTool) Name() string { return "search_incidents" }

func (t *SearchIncidentsTool) Description() string {
	return "Search current incidents by keyword, status, or priority. Returns matching incidents with id, title, status, priority and assignee."
}

func (t *SearchIncidentsTool) ParametersSchema() string {
	return `{"type":"object","properties":{"query":{"type":"string","description":"Keyword matched against title, category and assignee."},"status":{"type":"string","enum":["Open","InProgress","OnHold","Resolved"]},"priority":{"type":"string","enum":["low","medium","high","critical"]},"limit":{"type":"integer"}}}`
}

func (t *SearchIncidentsTool) Execute(ctx context.Context, rawArgs json.RawMessage) (string, error) {
	var args struct {
		Query    string `json:"query"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
		Limit    int    `json:"limit"`
	}
	if err := strictDecodeArgs(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	limit := args.Limit
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	records := append(t.cache.GetOpen(ctx, incident.PriorityAll), t.cache.GetResolved(ctx)...)
	query := strings.ToLower(strings.TrimSpace(args.Query))
	status, hasStatus := incident.NormalizeStatus(args.Status)
	priority, hasPriority := incident.NormalizePriority(args.Priority)
	if priority == incident.PriorityAll {
		hasPriority = false
	}

	matches := []incident.Record{}
	for _, record := range records {
		if hasStatus && record.Status != status {
			continue
		}
		if hasPriority && record.Priority != priority {
			continue
		}
		if query != "" && !recordMatches(record, query) {
			continue
		}
		matches = append(matches, record)
		if len(matches) == limit {
			break
		}
	}
	if len(matches) == 0 {
		return "No incidents match.", nil
	}

	var b strings.Builder
	for _, record := range matches {
		fmt.Fprintf(&b, "- %s %q status=%s priority=%s assignee=%s\n",
			record.ID, record.Title, record.Status, record.Priority, record.Assignee)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func recordMatches(record incident.Record, query string) bool {
	return strings.Contains(strings.ToLower(record.Title), query) ||
		strings.Contains(strings.ToLower(record.Category), query) ||
		strings.Contains(strings.ToLower(record.Assignee), query) ||
		strings.Contains(strings.ToLower(record.ID), query)
}

// IncidentAnalysisTool implements tools.Tool exposing the cache summary.
type IncidentAnalysisTool struct {
	cache Cache
}

func NewIncidentAnalysisTool(cache Cache) *IncidentAnalysisTool {
	return &IncidentAnalysisTool{cache: cache}
}

func (t *IncidentAnalysisTool) Name() string { return "incident_analysis" }

func (t *IncidentAnalysisTool) Description() string {
	return "Summarize current incidents: totals, open vs resolved, priority pressure, mean resolution time and top category."
}

func (t *IncidentAnalysisTool) ParametersSchema() string {
	return `{"type":"object","properties":{}}`
}

func (t *IncidentAnalysisTool) Execute(ctx context.Context, rawArgs json.RawMessage) (string, error) {
	var args struct{}
	if err := strictDecodeArgs(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	summary := t.cache.Analyze(ctx)
	if summary.Total == 0 {
		return "No incident data available.", nil
	}
	return fmt.Sprintf("total=%d open=%d resolved=%d critical=%d high=%d mean_resolution_hours=%.1f top_category=%s (%d)",
		summary.Total, summary.Open, summary.Resolved, summary.Critical, summary.High,
		summary.MeanResolutionHours, summary.TopCategory, summary.TopCategoryCount), nil
}
