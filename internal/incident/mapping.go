package incident

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsline/opsline/internal/provider"
)

var categories = []string{"network", "database", "application", "security", "hardware"}

// phraseTable rewrites raw report bodies into operator-readable summaries.
// First matching keyword wins; records with no match fall through to a
// length-based tier.
var phraseTable = []struct {
	keyword string
	phrase  string
}{
	{"reprehenderit", "Repeated request failures reported; affected users are retrying without success."},
	{"voluptat", "Users report intermittent errors when submitting requests through the primary workflow."},
	{"exercitation", "Background job throughput dropped below the expected baseline."},
	{"consequat", "Downstream consumers are receiving malformed or delayed responses."},
	{"occaecati", "Alerts indicate elevated error rates on a customer-facing endpoint."},
	{"architecto", "A dependency change appears to have destabilized an internal integration."},
}

const (
	shortBodyTier  = "Monitoring flagged a brief service degradation; impact appears limited."
	mediumBodyTier = "Multiple users are affected by degraded service; the on-call rotation has been notified."
	longBodyTier   = "A sustained service disruption is in progress with broad user impact; investigation notes are attached to the source report."
)

// MapRecords derives the cached incident set from raw source records.
// Every derived field is a pure function of the source record id and the
// reference time, so two refreshes over the same feed agree.
func MapRecords(reports []provider.Report, reporters []provider.Reporter, reference time.Time) []Record {
	records := make([]Record, 0, len(reports))
	for _, report := range reports {
		if report.ID < 1 {
			continue
		}
		records = append(records, mapRecord(report, reporters, reference))
	}
	return records
}

func mapRecord(report provider.Report, reporters []provider.Reporter, reference time.Time) Record {
	rid := report.ID
	status := deriveStatus(rid)
	priority := derivePriority(rid)
	createdAt := reference.Add(-time.Duration(rid*7+96) * time.Hour).UTC()

	record := Record{
		ID:          fmt.Sprintf("INC%08d", rid),
		Title:       capitalize(report.Title),
		Description: deriveDescription(report.Body),
		Status:      status,
		Priority:    priority,
		Severity:    severityFor(priority),
		Category:    categories[rid%len(categories)],
		Assignee:    deriveAssignee(rid, status, reporters),
		CreatedAt:   createdAt,
	}
	if status == StatusResolved {
		resolvedAt := createdAt.Add(time.Duration(rid%72+2) * time.Hour)
		record.ResolvedAt = &resolvedAt
	}
	return record
}

func deriveStatus(rid int) Status {
	switch {
	case rid%3 == 0:
		return StatusResolved
	case rid%5 == 0:
		return StatusInProgress
	case rid%7 == 0:
		return StatusOnHold
	default:
		return StatusOpen
	}
}

func derivePriority(rid int) Priority {
	if rid%10 == 0 {
		return PriorityCritical
	}
	switch rid % 3 {
	case 0:
		return PriorityHigh
	case 1:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func severityFor(priority Priority) string {
	switch priority {
	case PriorityCritical:
		return "1"
	case PriorityHigh:
		return "2"
	case PriorityMedium:
		return "3"
	default:
		return "4"
	}
}

func deriveAssignee(rid int, status Status, reporters []provider.Reporter) string {
	if (status == StatusOpen || status == StatusOnHold) && rid%2 == 1 {
		return Unassigned
	}
	if len(reporters) == 0 {
		return "Duty Operator"
	}
	reporter := reporters[(rid-1)%len(reporters)]
	if strings.TrimSpace(reporter.Name) == "" {
		return "Duty Operator"
	}
	return reporter.Name
}

func deriveDescription(body string) string {
	lower := strings.ToLower(body)
	for _, entry := range phraseTable {
		if strings.Contains(lower, entry.keyword) {
			return entry.phrase
		}
	}
	switch {
	case len(body) < 80:
		return shortBodyTier
	case len(body) < 160:
		return mediumBodyTier
	default:
		return longBodyTier
	}
}

func capitalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Untitled report"
	}
	return strings.ToUpper(trimmed[:1]) + trimmed[1:]
}
