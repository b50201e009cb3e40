package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/calmana/backend/internal/analysis/lexicon"
	"github.com/calmana/backend/internal/model/chat"
	"github.com/calmana/backend/internal/service/session"
)

func newStore(maxTurns int) *session.Store {
	return session.NewStore(maxTurns, session.NewUTCTurn(uuid.NewString))
}

func TestFreshSessionIsEmpty(t *testing.T) {
	store := newStore(16)

	id, turns := store.History("unseen")
	if id != "unseen" {
		t.Fatalf("unexpected session id: %s", id)
	}
	if len(turns) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(turns))
	}

	tally := store.Moods("unseen")
	if len(tally) != len(lexicon.Labels) {
		t.Fatalf("expected %d labels in tally, got %d", len(lexicon.Labels), len(tally))
	}
	for label, count := range tally {
		if count != 0 {
			t.Fatalf("expected zero tally for %s, got %d", label, count)
		}
	}
}

func TestDefaultSessionSentinel(t *testing.T) {
	store := newStore(16)

	if id := store.GetOrCreate(""); id != session.DefaultSessionID {
		t.Fatalf("expected sentinel id, got %s", id)
	}

	store.AppendTurn("", chat.RoleUser, "hello")
	_, turns := store.History(session.DefaultSessionID)
	if len(turns) != 1 {
		t.Fatalf("expected blank id to alias the default session, got %d turns", len(turns))
	}
}

func TestHistoryBoundFIFO(t *testing.T) {
	const maxTurns = 16
	store := newStore(maxTurns)

	for i := 0; i < 20; i++ {
		store.AppendTurn("s1", chat.RoleUser, fmt.Sprintf("user %d", i))
		store.AppendTurn("s1", chat.RoleAssistant, fmt.Sprintf("assistant %d", i))
	}

	_, turns := store.History("s1")
	if len(turns) != 2*maxTurns {
		t.Fatalf("expected history capped at %d, got %d", 2*maxTurns, len(turns))
	}
	// Oldest 4 pairs evicted; history starts at pair 4.
	if turns[0].Content != "user 4" {
		t.Fatalf("expected oldest surviving turn to be %q, got %q", "user 4", turns[0].Content)
	}
	if turns[len(turns)-1].Content != "assistant 19" {
		t.Fatalf("expected newest turn last, got %q", turns[len(turns)-1].Content)
	}
}

func TestTimestampsNonDecreasing(t *testing.T) {
	store := newStore(8)

	for i := 0; i < 10; i++ {
		store.AppendTurn("s1", chat.RoleUser, "m")
	}

	_, turns := store.History("s1")
	for i := 1; i < len(turns); i++ {
		if turns[i].Timestamp.Before(turns[i-1].Timestamp) {
			t.Fatal("timestamps must be non-decreasing within a session")
		}
	}
}

func TestIncrementAndReset(t *testing.T) {
	store := newStore(16)

	store.AppendTurn("s1", chat.RoleUser, "hello")
	store.IncrementMood("s1", lexicon.Sad)
	store.IncrementMood("s1", lexicon.Sad)
	store.IncrementMood("s1", lexicon.Happy)

	tally := store.Moods("s1")
	if tally[lexicon.Sad] != 2 || tally[lexicon.Happy] != 1 {
		t.Fatalf("unexpected tally: %v", tally)
	}

	// Unknown labels are created at zero rather than panicking.
	store.IncrementMood("s1", lexicon.Label("confused"))

	if id := store.Reset("s1"); id != "s1" {
		t.Fatalf("unexpected reset id: %s", id)
	}

	_, turns := store.History("s1")
	if len(turns) != 0 {
		t.Fatalf("expected empty history after reset, got %d", len(turns))
	}
	for label, count := range store.Moods("s1") {
		if count != 0 {
			t.Fatalf("expected zero tally for %s after reset, got %d", label, count)
		}
	}
}

func TestMoodsIdempotentRead(t *testing.T) {
	store := newStore(16)
	store.IncrementMood("s1", lexicon.Anxious)

	first := store.Moods("s1")
	second := store.Moods("s1")
	if first[lexicon.Anxious] != second[lexicon.Anxious] {
		t.Fatal("reads must not change the tally")
	}

	// Mutating the returned copy must not leak into the store.
	first[lexicon.Anxious] = 99
	if store.Moods("s1")[lexicon.Anxious] != 1 {
		t.Fatal("returned tally must be a copy")
	}
}

func TestConcurrentAppendsSameSession(t *testing.T) {
	const maxTurns = 8
	store := newStore(maxTurns)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AppendTurn("shared", chat.RoleUser, "m")
		}()
	}
	wg.Wait()

	_, turns := store.History("shared")
	if len(turns) != 2*maxTurns {
		t.Fatalf("expected bounded history under concurrency, got %d", len(turns))
	}
}

func TestConcurrentDistinctSessions(t *testing.T) {
	store := newStore(16)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", n)
			store.AppendTurn(id, chat.RoleUser, "m")
			store.IncrementMood(id, lexicon.Neutral)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("s%d", i)
		if _, turns := store.History(id); len(turns) != 1 {
			t.Fatalf("session %s lost an append", id)
		}
	}
}
