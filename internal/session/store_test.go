package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestGetOrCreateSeedsSystemTurn(t *testing.T) {
	store := NewStore(DefaultMaxTurns)
	history := store.GetOrCreate("s1", "you are helpful")

	turns := history.Snapshot()
	if len(turns) != 1 {
		t.Fatalf("new history should hold exactly the system turn, got %d turns", len(turns))
	}
	if turns[0].Role != RoleSystem || turns[0].Content != "you are helpful" {
		t.Errorf("unexpected seed turn: %+v", turns[0])
	}

	// A second call returns the same history, not a re-seeded one.
	history.Append(RoleUser, "hello")
	again := store.GetOrCreate("s1", "different instruction")
	if again.Len() != 2 {
		t.Errorf("existing session should survive GetOrCreate, got %d turns", again.Len())
	}
	if again.Snapshot()[0].Content != "you are helpful" {
		t.Error("existing session should keep its original system instruction")
	}
}

func TestAppendTrimsToBudgetKeepingSystemTurn(t *testing.T) {
	store := NewStore(5)
	history := store.GetOrCreate("s1", "system")

	for round := 0; round < 10; round++ {
		history.Append(RoleUser, fmt.Sprintf("question %d", round))
		history.Append(RoleAssistant, fmt.Sprintf("answer %d", round))
	}

	turns := history.Snapshot()
	if len(turns) != 5 {
		t.Fatalf("history should be trimmed to 5 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleSystem {
		t.Errorf("system turn must survive trimming, first turn is %q", turns[0].Role)
	}
	if last := turns[len(turns)-1]; last.Content != "answer 9" {
		t.Errorf("trimming should evict oldest turns first, last turn is %q", last.Content)
	}
}

func TestClearDiscardsSession(t *testing.T) {
	store := NewStore(DefaultMaxTurns)
	store.GetOrCreate("s1", "system").Append(RoleUser, "hello")
	store.GetOrCreate("s2", "system")

	store.Clear("s1")
	if store.Len() != 1 {
		t.Fatalf("clearing one session should leave the other, got %d sessions", store.Len())
	}

	reseeded := store.GetOrCreate("s1", "fresh instruction")
	turns := reseeded.Snapshot()
	if len(turns) != 1 || turns[0].Content != "fresh instruction" {
		t.Errorf("cleared session should re-seed with the new instruction, got %+v", turns)
	}
}

func TestConcurrentFirstUseSeedsOnce(t *testing.T) {
	store := NewStore(DefaultMaxTurns)

	var wg sync.WaitGroup
	for worker := 0; worker < 16; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			history := store.GetOrCreate("shared", "system")
			history.Append(RoleUser, "ping")
		}()
	}
	wg.Wait()

	turns := store.GetOrCreate("shared", "system").Snapshot()
	if len(turns) != 17 {
		t.Fatalf("expected 1 system + 16 user turns, got %d", len(turns))
	}
	systemTurns := 0
	for _, turn := range turns {
		if turn.Role == RoleSystem {
			systemTurns++
		}
	}
	if systemTurns != 1 {
		t.Errorf("concurrent first use should seed exactly one system turn, got %d", systemTurns)
	}
}
