package incident

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var ErrNotFound = errors.New("incident not found")

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusOnHold     Status = "OnHold"
	StatusResolved   Status = "Resolved"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// PriorityAll is the extractor default when a message names no priority.
const PriorityAll Priority = "all"

// priorityRank orders priorities for sorting, critical highest.
func priorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Record is one incident as served by the cache. ResolvedAt is non-nil
// exactly when Status is Resolved, and is never before CreatedAt.
type Record struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Severity    string     `json:"severity"`
	Category    string     `json:"category"`
	Assignee    string     `json:"assignee"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Unassigned is the assignee sentinel for incidents nobody owns yet.
const Unassigned = "Unassigned"

func NormalizeStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "open":
		return StatusOpen, true
	case "inprogress", "in progress", "in-progress":
		return StatusInProgress, true
	case "onhold", "on hold", "on-hold":
		return StatusOnHold, true
	case "resolved", "closed":
		return StatusResolved, true
	default:
		return "", false
	}
}

func NormalizePriority(value string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return PriorityLow, true
	case "medium", "normal":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	case "critical", "urgent":
		return PriorityCritical, true
	case "all", "any", "":
		return PriorityAll, true
	default:
		return "", false
	}
}

// sortOpen orders open-incident listings: priority descending, then
// creation time ascending, so the oldest critical incident leads.
func sortOpen(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ri, rj := priorityRank(records[i].Priority), priorityRank(records[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

// sortResolved orders resolved listings by resolution time descending.
func sortResolved(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := records[i].ResolvedAt, records[j].ResolvedAt
		switch {
		case ti == nil && tj == nil:
			return records[i].CreatedAt.After(records[j].CreatedAt)
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
}

// sortByCreated orders priority-filtered listings by creation time ascending.
func sortByCreated(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
