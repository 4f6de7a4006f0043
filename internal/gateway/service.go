// Package gateway is the conversational front door: each message is first
// offered to an ordered table of direct intent routes backed by the incident
// cache, and only unclaimed messages reach the language-model fallback.
package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opsline/opsline/internal/agent"
	"github.com/opsline/opsline/internal/incident"
)

// Tool tags name the capability that produced a direct answer. Clients use
// them to pick icons and layouts for the reply.
const (
	ToolTagList     = "incident_list"
	ToolTagCount    = "incident_count"
	ToolTagDetails  = "incident_details"
	ToolTagUpdate   = "incident_update"
	ToolTagResolve  = "incident_resolve"
	ToolTagAssign   = "incident_assign"
	ToolTagCreate   = "incident_create"
	ToolTagAnalysis = "incident_analysis"
)

type MessageInput struct {
	SessionID string
	Message   string
}

type MessageOutput struct {
	SessionID        string            `json:"session_id"`
	Text             string            `json:"text"`
	Direct           bool              `json:"direct"`
	ToolTag          string            `json:"tool_tag,omitempty"`
	SuggestedActions []string          `json:"suggested_actions,omitempty"`
	Records          []incident.Record `json:"records,omitempty"`
	ToolsInvoked     []string          `json:"tools_invoked,omitempty"`
}

// Cache is the slice of the incident cache the gateway needs.
type Cache interface {
	GetOpen(ctx context.Context, priority incident.Priority) []incident.Record
	GetResolved(ctx context.Context) []incident.Record
	GetByPriority(ctx context.Context, priority incident.Priority) []incident.Record
	GetByID(ctx context.Context, id string) (incident.Record, error)
	Analyze(ctx context.Context) incident.Summary
}

// Fallback is the conversational agent behind the direct routes.
type Fallback interface {
	Chat(ctx context.Context, sessionID, message string) agent.ChatResult
	ClearSession(sessionID string)
}

type Service struct {
	cache    Cache
	fallback Fallback
	logger   *slog.Logger
}

func NewService(cache Cache, fallback Fallback, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cache: cache, fallback: fallback, logger: logger}
}

// HandleMessage answers one user message. A blank session id gets a fresh
// one minted so the caller can continue the conversation.
func (s *Service) HandleMessage(ctx context.Context, input MessageInput) MessageOutput {
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	mc := newMessageContext(input.Message)
	intent := classify(mc)
	s.logger.Debug("message classified", "session", sessionID, "intent", string(intent))

	if intent == IntentNoMatch {
		result := s.fallback.Chat(ctx, sessionID, input.Message)
		return MessageOutput{
			SessionID:    sessionID,
			Text:         result.Reply,
			Direct:       false,
			ToolsInvoked: result.ToolsInvoked,
		}
	}

	output := s.dispatch(ctx, intent, mc)
	output.SessionID = sessionID
	output.Direct = true
	return output
}

// ClearSession forgets one conversation's history.
func (s *Service) ClearSession(sessionID string) {
	s.fallback.ClearSession(sessionID)
}

// Incidents exposes the cache's full view for the read-only HTTP endpoints.
func (s *Service) Incidents(ctx context.Context) []incident.Record {
	open := s.cache.GetOpen(ctx, incident.PriorityAll)
	resolved := s.cache.GetResolved(ctx)
	return append(open, resolved...)
}

// Analysis exposes the cache summary for the read-only HTTP endpoints.
func (s *Service) Analysis(ctx context.Context) incident.Summary {
	return s.cache.Analyze(ctx)
}

// dispatch runs the matched intent's handler behind a recover boundary so a
// handler bug degrades to an apologetic reply instead of dropping the message.
func (s *Service) dispatch(ctx context.Context, intent Intent, mc messageContext) (output MessageOutput) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("intent handler panicked", "intent", string(intent), "panic", fmt.Sprint(r))
			output = MessageOutput{
				Text:    "Something went wrong answering that. Please try again.",
				ToolTag: output.ToolTag,
			}
			if output.ToolTag == "" {
				output.ToolTag = tagFor(intent)
			}
		}
	}()

	switch intent {
	case IntentListOpen:
		return s.handleListOpen(ctx, mc)
	case IntentListCritical:
		return s.handleListByPriority(ctx, incident.PriorityCritical)
	case IntentListHighPriority:
		return s.handleListByPriority(ctx, incident.PriorityHigh)
	case IntentListResolved:
		return s.handleListResolved(ctx)
	case IntentCount:
		return s.handleCount(ctx, mc)
	case IntentDetails:
		return s.handleDetails(ctx, mc)
	case IntentUpdateStatus:
		return s.handleUpdateStatus(ctx, mc)
	case IntentResolve:
		return s.handleResolve(ctx, mc)
	case IntentAssign:
		return s.handleAssign(ctx, mc)
	case IntentCreate:
		return s.handleCreate(mc)
	case IntentAnalyze:
		return s.handleAnalyze(ctx)
	default:
		return MessageOutput{Text: "I didn't follow that. Try \"show open incidents\"."}
	}
}

func tagFor(intent Intent) string {
	switch intent {
	case IntentListOpen, IntentListCritical, IntentListHighPriority, IntentListResolved:
		return ToolTagList
	case IntentCount:
		return ToolTagCount
	case IntentDetails:
		return ToolTagDetails
	case IntentUpdateStatus:
		return ToolTagUpdate
	case IntentResolve:
		return ToolTagResolve
	case IntentAssign:
		return ToolTagAssign
	case IntentCreate:
		return ToolTagCreate
	case IntentAnalyze:
		return ToolTagAnalysis
	default:
		return ""
	}
}
