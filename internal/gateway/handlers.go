package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsline/opsline/internal/extract"
	"github.com/opsline/opsline/internal/incident"
)

var listSuggestions = []string{
	"Show critical incidents",
	"Show resolved incidents",
	"Analyze incidents",
}

func (s *Service) handleListOpen(ctx context.Context, mc messageContext) MessageOutput {
	records := s.cache.GetOpen(ctx, mc.priority)
	text := fmt.Sprintf("There are %d open incidents.", len(records))
	if mc.priority != incident.PriorityAll {
		text = fmt.Sprintf("There are %d open %s priority incidents.", len(records), mc.priority)
	}
	if len(records) == 0 {
		text = "No open incidents right now."
	}
	return MessageOutput{
		Text:             text,
		ToolTag:          ToolTagList,
		Records:          records,
		SuggestedActions: listSuggestions,
	}
}

func (s *Service) handleListByPriority(ctx context.Context, priority incident.Priority) MessageOutput {
	records := s.cache.GetByPriority(ctx, priority)
	text := fmt.Sprintf("Found %d %s priority incidents.", len(records), priority)
	if len(records) == 0 {
		text = fmt.Sprintf("No %s priority incidents right now.", priority)
	}
	suggestions := []string{"Show open incidents", "Analyze incidents"}
	if priority != incident.PriorityCritical {
		suggestions = append([]string{"Show critical incidents"}, suggestions...)
	}
	return MessageOutput{
		Text:             text,
		ToolTag:          ToolTagList,
		Records:          records,
		SuggestedActions: suggestions,
	}
}

func (s *Service) handleListResolved(ctx context.Context) MessageOutput {
	records := s.cache.GetResolved(ctx)
	text := fmt.Sprintf("%d incidents have been resolved.", len(records))
	if len(records) == 0 {
		text = "No resolved incidents yet."
	}
	return MessageOutput{
		Text:             text,
		ToolTag:          ToolTagList,
		Records:          records,
		SuggestedActions: []string{"Show open incidents", "Analyze incidents"},
	}
}

func (s *Service) handleCount(ctx context.Context, mc messageContext) MessageOutput {
	var (
		records []incident.Record
		scope   string
	)
	switch {
	case strings.Contains(mc.lower, "resolved"):
		records = s.cache.GetResolved(ctx)
		scope = "resolved"
	case mc.priority != incident.PriorityAll:
		records = s.cache.GetByPriority(ctx, mc.priority)
		scope = string(mc.priority) + " priority"
	default:
		records = s.cache.GetOpen(ctx, incident.PriorityAll)
		scope = "open"
	}
	return MessageOutput{
		Text:             fmt.Sprintf("There are %d %s incidents.", len(records), scope),
		ToolTag:          ToolTagCount,
		SuggestedActions: []string{"Show open incidents", "Show critical incidents", "Analyze incidents"},
	}
}

func (s *Service) handleDetails(ctx context.Context, mc messageContext) MessageOutput {
	if !mc.hasID() {
		return MessageOutput{
			Text:             "Which incident? Give me an id like INC00000001.",
			ToolTag:          ToolTagDetails,
			SuggestedActions: []string{"Show open incidents"},
		}
	}
	record, err := s.cache.GetByID(ctx, mc.incidentID)
	if err != nil {
		return notFoundOutput(mc.incidentID, ToolTagDetails)
	}
	return MessageOutput{
		Text:             formatDetails(record),
		ToolTag:          ToolTagDetails,
		Records:          []incident.Record{record},
		SuggestedActions: detailFollowUps(record),
	}
}

// detailFollowUps builds the next-step suggestions for one incident from its
// current status and priority, capped at four entries.
func detailFollowUps(record incident.Record) []string {
	suggestions := []string{}
	switch record.Status {
	case incident.StatusOpen:
		suggestions = append(suggestions,
			fmt.Sprintf("Assign %s to the duty operator", record.ID),
			fmt.Sprintf("Update %s to in progress", record.ID))
		if record.Priority == incident.PriorityCritical {
			suggestions = append(suggestions, fmt.Sprintf("Escalate %s", record.ID))
		}
	case incident.StatusInProgress:
		suggestions = append(suggestions,
			fmt.Sprintf("Update %s to on hold", record.ID),
			fmt.Sprintf("Resolve %s", record.ID),
			fmt.Sprintf("Notify the assignee of %s", record.ID))
	case incident.StatusOnHold:
		suggestions = append(suggestions,
			fmt.Sprintf("Update %s to in progress", record.ID),
			fmt.Sprintf("Assign %s to the duty operator", record.ID))
	case incident.StatusResolved:
		suggestions = append(suggestions,
			fmt.Sprintf("Show resolution notes for %s", record.ID),
			"Find similar incidents")
	}
	suggestions = append(suggestions, "Show open incidents")
	if len(suggestions) > 4 {
		suggestions = suggestions[:4]
	}
	return suggestions
}

func formatDetails(record incident.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", record.ID, record.Title)
	fmt.Fprintf(&b, "Status: %s | Priority: %s | Severity: %s | Category: %s\n",
		record.Status, record.Priority, record.Severity, record.Category)
	fmt.Fprintf(&b, "Assignee: %s | Created: %s", record.Assignee, record.CreatedAt.Format("2006-01-02 15:04"))
	if record.ResolvedAt != nil {
		fmt.Fprintf(&b, " | Resolved: %s", record.ResolvedAt.Format("2006-01-02 15:04"))
	}
	if record.Description != "" {
		fmt.Fprintf(&b, "\n%s", record.Description)
	}
	return b.String()
}

func (s *Service) handleUpdateStatus(ctx context.Context, mc messageContext) MessageOutput {
	if !mc.hasID() {
		return MessageOutput{
			Text:    "Which incident should I update? Include an id like INC00000001.",
			ToolTag: ToolTagUpdate,
		}
	}
	if _, err := s.cache.GetByID(ctx, mc.incidentID); err != nil {
		return notFoundOutput(mc.incidentID, ToolTagUpdate)
	}
	return MessageOutput{
		Text:             fmt.Sprintf("Noted: %s should move to %s. Status changes are applied in the incident system of record.", mc.incidentID, mc.status),
		ToolTag:          ToolTagUpdate,
		SuggestedActions: []string{fmt.Sprintf("Show details for %s", mc.incidentID), "Show open incidents"},
	}
}

func (s *Service) handleResolve(ctx context.Context, mc messageContext) MessageOutput {
	if !mc.hasID() {
		return MessageOutput{
			Text:    "Which incident should I resolve? Include an id like INC00000001.",
			ToolTag: ToolTagResolve,
		}
	}
	record, err := s.cache.GetByID(ctx, mc.incidentID)
	if err != nil {
		return notFoundOutput(mc.incidentID, ToolTagResolve)
	}
	if record.Status == incident.StatusResolved {
		return MessageOutput{
			Text:             fmt.Sprintf("%s is already resolved.", record.ID),
			ToolTag:          ToolTagResolve,
			SuggestedActions: []string{"Show open incidents"},
		}
	}
	return MessageOutput{
		Text:             fmt.Sprintf("Noted: %s will be marked resolved. Resolution is recorded in the incident system of record.", record.ID),
		ToolTag:          ToolTagResolve,
		SuggestedActions: []string{"Show open incidents", "Analyze incidents"},
	}
}

func (s *Service) handleAssign(ctx context.Context, mc messageContext) MessageOutput {
	if !mc.hasID() {
		return MessageOutput{
			Text:    "Which incident should I assign? Include an id like INC00000001.",
			ToolTag: ToolTagAssign,
		}
	}
	if _, err := s.cache.GetByID(ctx, mc.incidentID); err != nil {
		return notFoundOutput(mc.incidentID, ToolTagAssign)
	}
	assignee := extract.Assignee(mc.raw)
	text := fmt.Sprintf("Noted: %s will be assigned. Assignments are applied in the incident system of record.", mc.incidentID)
	if assignee != "" {
		text = fmt.Sprintf("Noted: %s will be assigned to %s. Assignments are applied in the incident system of record.", mc.incidentID, assignee)
	}
	return MessageOutput{
		Text:             text,
		ToolTag:          ToolTagAssign,
		SuggestedActions: []string{fmt.Sprintf("Show details for %s", mc.incidentID), "Show open incidents"},
	}
}

func (s *Service) handleCreate(mc messageContext) MessageOutput {
	title := extract.Title(mc.raw)
	priority := mc.priority
	if priority == incident.PriorityAll {
		priority = incident.PriorityMedium
	}
	text := fmt.Sprintf("Noted: a new %s priority incident will be created. New incidents are raised in the incident system of record.", priority)
	if title != "" {
		text = fmt.Sprintf("Noted: a new %s priority incident %q will be created. New incidents are raised in the incident system of record.", priority, title)
	}
	return MessageOutput{
		Text:             text,
		ToolTag:          ToolTagCreate,
		SuggestedActions: []string{"Show open incidents", "Show critical incidents"},
	}
}

func (s *Service) handleAnalyze(ctx context.Context) MessageOutput {
	summary := s.cache.Analyze(ctx)
	if summary.Total == 0 {
		return MessageOutput{
			Text:             "No incident data is available to analyze right now.",
			ToolTag:          ToolTagAnalysis,
			SuggestedActions: []string{"Show open incidents"},
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Across %d incidents: %d open, %d resolved.\n", summary.Total, summary.Open, summary.Resolved)
	fmt.Fprintf(&b, "%d critical and %d high priority need attention.", summary.Critical, summary.High)
	if summary.MeanResolutionHours > 0 {
		fmt.Fprintf(&b, "\nMean time to resolution is %.1f hours.", summary.MeanResolutionHours)
	}
	if summary.TopCategory != "" {
		fmt.Fprintf(&b, "\nMost affected category: %s (%d incidents).", summary.TopCategory, summary.TopCategoryCount)
	}
	return MessageOutput{
		Text:             b.String(),
		ToolTag:          ToolTagAnalysis,
		SuggestedActions: []string{"Show critical incidents", "Show open incidents", "Show resolved incidents"},
	}
}

func notFoundOutput(id, tag string) MessageOutput {
	return MessageOutput{
		Text:             fmt.Sprintf("I couldn't find %s. It may have aged out of the current view.", id),
		ToolTag:          tag,
		SuggestedActions: []string{"Show open incidents"},
	}
}
