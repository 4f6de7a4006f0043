// Package session owns the per-session conversation histories used by the
// conversational fallback. Histories are created lazily, seeded with one
// system turn, bounded to a turn budget, and live for the process lifetime
// unless cleared.
package session

import (
	"sync"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one entry in a session history.
type Turn struct {
	Role    Role
	Content string
	At      time.Time
}

// DefaultMaxTurns bounds history growth per session.
const DefaultMaxTurns = 24

// Store keeps one History per session id. Cross-session access is
// independent; same-session access is serialized by the history's own lock.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*History
	maxTurns int
	now      func() time.Time
}

type History struct {
	mu       sync.Mutex
	turns    []Turn
	maxTurns int
	now      func() time.Time
}

func NewStore(maxTurns int) *Store {
	if maxTurns < 2 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		sessions: map[string]*History{},
		maxTurns: maxTurns,
		now:      time.Now,
	}
}

// GetOrCreate returns the session's history, seeding a new one with the
// system instruction on first use. Get-or-insert is atomic, so concurrent
// first calls for the same id never double-seed.
func (s *Store) GetOrCreate(id, systemInstruction string) *History {
	s.mu.Lock()
	defer s.mu.Unlock()
	if history, exists := s.sessions[id]; exists {
		return history
	}
	history := &History{
		turns:    []Turn{{Role: RoleSystem, Content: systemInstruction, At: s.now().UTC()}},
		maxTurns: s.maxTurns,
		now:      s.now,
	}
	s.sessions[id] = history
	return history
}

// Clear discards a session entirely; the next GetOrCreate re-seeds it.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Append adds a turn and trims to the budget, evicting the oldest
// non-system turn first. The seeded system turn is never evicted.
func (h *History) Append(role Role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, Turn{Role: role, Content: content, At: h.now().UTC()})
	h.trimLocked()
}

// Snapshot returns a copy of the current turns.
func (h *History) Snapshot() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	snapshot := make([]Turn, len(h.turns))
	copy(snapshot, h.turns)
	return snapshot
}

// Len reports the current turn count.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

func (h *History) trimLocked() {
	for len(h.turns) > h.maxTurns {
		evicted := false
		for index, turn := range h.turns {
			if turn.Role != RoleSystem {
				h.turns = append(h.turns[:index], h.turns[index+1:]...)
				evicted = true
				break
			}
		}
		if !evicted {
			return
		}
	}
}
