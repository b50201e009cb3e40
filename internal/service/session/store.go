package session

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/calmana/backend/internal/analysis/lexicon"
	"github.com/calmana/backend/internal/model/chat"
)

// DefaultSessionID is the sentinel used when the caller supplies no id.
const DefaultSessionID = "default"

// DefaultMaxTurns bounds history at 2*DefaultMaxTurns entries unless
// overridden through the Store constructor.
const DefaultMaxTurns = 16

// session is the mutable in-memory record behind one session id. Its mutex
// serializes mutations for that id only; distinct sessions never contend.
type session struct {
	mu    sync.Mutex
	turns []chat.Turn
	moods map[lexicon.Label]int
}

func newSession() *session {
	return &session{
		turns: make([]chat.Turn, 0, 2*DefaultMaxTurns),
		moods: zeroTally(),
	}
}

func zeroTally() map[lexicon.Label]int {
	tally := make(map[lexicon.Label]int, len(lexicon.Labels))
	for _, label := range lexicon.Labels {
		tally[label] = 0
	}
	return tally
}

// Store keeps every session for the process lifetime. Sessions are created
// lazily on first reference and are never destroyed, only reset.
type Store struct {
	registry *gocache.Cache
	maxTurns int
	newTurn  func(role, content string) chat.Turn
}

// NewStore builds an empty store. maxTurns <= 0 falls back to the default.
func NewStore(maxTurns int, newTurn func(role, content string) chat.Turn) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		registry: gocache.New(gocache.NoExpiration, 0),
		maxTurns: maxTurns,
		newTurn:  newTurn,
	}
}

// MaxTurns reports the configured turn bound.
func (s *Store) MaxTurns() int {
	return s.maxTurns
}

// getOrCreate resolves the record for an id, registering an empty one on
// first reference. go-cache's Add is atomic, so concurrent first references
// converge on a single record.
func (s *Store) getOrCreate(sessionID string) *session {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	if existing, found := s.registry.Get(sessionID); found {
		return existing.(*session)
	}
	created := newSession()
	if err := s.registry.Add(sessionID, created, gocache.NoExpiration); err != nil {
		// Lost the registration race; the winner's record is authoritative.
		existing, _ := s.registry.Get(sessionID)
		return existing.(*session)
	}
	return created
}

// GetOrCreate ensures a session exists and returns its id after sentinel
// substitution.
func (s *Store) GetOrCreate(sessionID string) string {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	s.getOrCreate(sessionID)
	return sessionID
}

// AppendTurn records a new turn and evicts the oldest entries once history
// would exceed 2*maxTurns. Timestamps stay non-decreasing within a session
// because appends for one id serialize on its lock.
func (s *Store) AppendTurn(sessionID, role, content string) chat.Turn {
	record := s.getOrCreate(sessionID)

	record.mu.Lock()
	defer record.mu.Unlock()

	// Created under the lock so timestamps never go backwards in history.
	turn := s.newTurn(role, content)
	record.turns = append(record.turns, turn)
	if limit := 2 * s.maxTurns; len(record.turns) > limit {
		overflow := len(record.turns) - limit
		record.turns = append(record.turns[:0:0], record.turns[overflow:]...)
	}
	return turn
}

// IncrementMood bumps the tally for a label, creating the entry at zero if
// the label was somehow unseen.
func (s *Store) IncrementMood(sessionID string, label lexicon.Label) {
	record := s.getOrCreate(sessionID)

	record.mu.Lock()
	defer record.mu.Unlock()

	record.moods[label]++
}

// Reset clears history and zeroes the tally regardless of prior state.
func (s *Store) Reset(sessionID string) string {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	record := s.getOrCreate(sessionID)

	record.mu.Lock()
	defer record.mu.Unlock()

	record.turns = record.turns[:0]
	record.moods = zeroTally()
	return sessionID
}

// History returns a copy of the session's turns, oldest first. Unknown ids
// materialize as empty sessions rather than erroring.
func (s *Store) History(sessionID string) (string, []chat.Turn) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	record := s.getOrCreate(sessionID)

	record.mu.Lock()
	defer record.mu.Unlock()

	copied := make([]chat.Turn, len(record.turns))
	copy(copied, record.turns)
	return sessionID, copied
}

// Moods returns a copy of the tally with every label present.
func (s *Store) Moods(sessionID string) map[lexicon.Label]int {
	record := s.getOrCreate(sessionID)

	record.mu.Lock()
	defer record.mu.Unlock()

	tally := make(map[lexicon.Label]int, len(record.moods))
	for label, count := range record.moods {
		tally[label] = count
	}
	return tally
}

// NewUTCTurn is the default turn factory.
func NewUTCTurn(newID func() string) func(role, content string) chat.Turn {
	return func(role, content string) chat.Turn {
		return chat.Turn{
			ID:        newID(),
			Role:      role,
			Content:   content,
			Timestamp: time.Now().UTC(),
		}
	}
}
