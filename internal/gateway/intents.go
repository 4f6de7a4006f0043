package gateway

import (
	"strings"

	"github.com/opsline/opsline/internal/extract"
	"github.com/opsline/opsline/internal/incident"
)

// Intent names a directly routable request. Anything the table below cannot
// claim falls through to the conversational agent.
type Intent string

const (
	IntentListOpen         Intent = "list_open"
	IntentListCritical     Intent = "list_critical"
	IntentListHighPriority Intent = "list_high_priority"
	IntentListResolved     Intent = "list_resolved"
	IntentCount            Intent = "count"
	IntentDetails          Intent = "details"
	IntentUpdateStatus     Intent = "update_status"
	IntentResolve          Intent = "resolve"
	IntentAssign           Intent = "assign"
	IntentAnalyze          Intent = "analyze"
	IntentCreate           Intent = "create"
	IntentNoMatch          Intent = "no_match"
)

// messageContext carries the lowered text plus everything the extractors
// pulled out, so each predicate stays a cheap string check.
type messageContext struct {
	raw        string
	lower      string
	incidentID string
	priority   incident.Priority
	status     incident.Status
	hasStatus  bool
}

func newMessageContext(text string) messageContext {
	mc := messageContext{
		raw:        strings.TrimSpace(text),
		lower:      strings.ToLower(strings.TrimSpace(text)),
		incidentID: extract.IncidentID(text),
		priority:   extract.Priority(text),
	}
	mc.status, mc.hasStatus = extract.Status(text)
	return mc
}

func (mc messageContext) hasID() bool {
	return mc.incidentID != ""
}

type route struct {
	intent Intent
	match  func(messageContext) bool
}

// routeTable is evaluated top to bottom; the first matching predicate wins.
// Ordering is load-bearing: counting beats listing, specific-incident verbs
// beat collection listings, and "resolved" listings are claimed before the
// resolve verb can see them.
var routeTable = []route{
	{IntentCount, func(mc messageContext) bool {
		return containsAny(mc.lower, "how many", "count", "number of", "total")
	}},
	{IntentDetails, func(mc messageContext) bool {
		if strings.Contains(mc.lower, "detail") {
			return true
		}
		return mc.hasID() && containsAny(mc.lower, "show", "about", "info", "tell", "what", "describe")
	}},
	{IntentUpdateStatus, func(mc messageContext) bool {
		return mc.hasStatus && containsAny(mc.lower, "update", "change", "set ", "mark", "move")
	}},
	{IntentListResolved, func(mc messageContext) bool {
		// "unresolved" means the opposite and belongs to the open listing.
		return strings.Contains(mc.lower, "resolved") &&
			!strings.Contains(mc.lower, "unresolved") && !mc.hasID()
	}},
	{IntentResolve, func(mc messageContext) bool {
		return containsAny(mc.lower, "resolve", "close", "fixed") &&
			!strings.Contains(mc.lower, "unresolved")
	}},
	{IntentAssign, func(mc messageContext) bool {
		return strings.Contains(mc.lower, "assign")
	}},
	{IntentCreate, func(mc messageContext) bool {
		return strings.Contains(mc.lower, "incident") &&
			containsAny(mc.lower, "create", "add ", "new ", "raise", "report a", "log a")
	}},
	{IntentListCritical, func(mc messageContext) bool {
		return strings.Contains(mc.lower, "critical")
	}},
	{IntentListHighPriority, func(mc messageContext) bool {
		return strings.Contains(mc.lower, "high")
	}},
	{IntentListOpen, func(mc messageContext) bool {
		return containsAny(mc.lower, "open", "active", "outstanding", "ongoing", "unresolved", "in progress", "on hold") ||
			containsAny(mc.lower, "show incidents", "list incidents", "all incidents", "current incidents")
	}},
	{IntentAnalyze, func(mc messageContext) bool {
		return containsAny(mc.lower, "analy", "summar", "overview", "insight", "trend", "report", "breakdown", "statistic", "stats")
	}},
}

// classify returns the first intent whose predicate claims the message, or
// IntentNoMatch when the table is exhausted.
func classify(mc messageContext) Intent {
	if mc.lower == "" {
		return IntentNoMatch
	}
	for _, r := range routeTable {
		if r.match(mc) {
			return r.intent
		}
	}
	return IntentNoMatch
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
