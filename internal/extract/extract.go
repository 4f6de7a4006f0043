// Package extract turns free-text messages into typed fragments: incident
// ids, priorities, statuses, assignees, titles, and bounded counts. Every
// function is pure and fails soft: no match means "no value", never an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/opsline/opsline/internal/incident"
)

var (
	incidentIDPattern = regexp.MustCompile(`(?i)\binc\d+\b`)
	integerPattern    = regexp.MustCompile(`\d+`)
	titleLeadPattern  = regexp.MustCompile(`(?i)\b(?:create|add|new)\b(?:\s+\w+)?\s+incident\b[\s:,-]*`)
)

// MaxBoundedCount caps any count extracted from a message.
const MaxBoundedCount = 50

// IncidentID returns the first INC-prefixed identifier, uppercased, or ""
// when the message names none.
func IncidentID(text string) string {
	match := incidentIDPattern.FindString(text)
	if match == "" {
		return ""
	}
	return strings.ToUpper(match)
}

// priorityKeywords is ordered: narrower priorities are checked before the
// broader ones so "critical" wins over any later keyword.
var priorityKeywords = []struct {
	keyword  string
	priority incident.Priority
}{
	{"critical", incident.PriorityCritical},
	{"urgent", incident.PriorityCritical},
	{"high", incident.PriorityHigh},
	{"medium", incident.PriorityMedium},
	{"low", incident.PriorityLow},
}

// Priority returns the first priority keyword found, or PriorityAll.
func Priority(text string) incident.Priority {
	lower := strings.ToLower(text)
	for _, entry := range priorityKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.priority
		}
	}
	return incident.PriorityAll
}

// statusKeywords is ordered: multi-word phrases come before the bare "open"
// so phrases like "in progress" are not shadowed. The order is a documented
// behavior, not an accident — "reopen" still extracts Open because the text
// contains that substring, a known ambiguity preserved from the source
// heuristic.
var statusKeywords = []struct {
	keyword string
	status  incident.Status
}{
	{"resolved", incident.StatusResolved},
	{"close", incident.StatusResolved},
	{"in progress", incident.StatusInProgress},
	{"in-progress", incident.StatusInProgress},
	{"on hold", incident.StatusOnHold},
	{"on-hold", incident.StatusOnHold},
	{"open", incident.StatusOpen},
}

// Status returns the first status keyword found and true, or false when the
// message names no status.
func Status(text string) (incident.Status, bool) {
	lower := strings.ToLower(text)
	for _, entry := range statusKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.status, true
		}
	}
	return "", false
}

// Assignee returns the name a message assigns work to. A trailing
// "to <name>" clause wins; failing that, text following the incident id is
// used when it does not itself contain "to". Empty means no assignee found.
func Assignee(text string) string {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if index := strings.LastIndex(lower, " to "); index >= 0 {
		name := cleanName(trimmed[index+len(" to "):])
		if name != "" {
			return name
		}
	}

	location := incidentIDPattern.FindStringIndex(trimmed)
	if location == nil {
		return ""
	}
	tail := cleanName(trimmed[location[1]:])
	if tail == "" || strings.Contains(strings.ToLower(tail), "to") {
		return ""
	}
	return tail
}

// Title returns the incident title embedded in a creation request: the text
// between "create/add/new ... incident" and a trailing priority, category,
// or description clause.
func Title(text string) string {
	location := titleLeadPattern.FindStringIndex(text)
	if location == nil {
		return ""
	}
	title := text[location[1]:]
	lower := strings.ToLower(title)
	cut := len(title)
	for _, stop := range []string{"priority", "category", "description"} {
		if index := strings.Index(lower, stop); index >= 0 && index < cut {
			cut = index
		}
	}
	title = title[:cut]
	title = strings.TrimSpace(strings.Trim(title, " .,:;!?-"))
	lower = strings.ToLower(title)
	for _, connective := range []string{" with", " and", " of", " at"} {
		if strings.HasSuffix(lower, connective) {
			title = strings.TrimSpace(title[:len(title)-len(connective)])
			break
		}
	}
	return strings.Trim(title, `"'`)
}

// BoundedCount returns the first integer literal clamped to
// [0, MaxBoundedCount], or fallback when the text has none.
func BoundedCount(text string, fallback int) int {
	match := integerPattern.FindString(text)
	if match == "" {
		return fallback
	}
	value, err := strconv.Atoi(match)
	if err != nil {
		return fallback
	}
	if value < 0 {
		return 0
	}
	if value > MaxBoundedCount {
		return MaxBoundedCount
	}
	return value
}

func cleanName(value string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(value), " .,:;!?"))
}
