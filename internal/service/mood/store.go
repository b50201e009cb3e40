package mood

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/calmana/backend/internal/model/mood"
)

// confidenceThreshold gates updates to the last-known emotion so a single
// low-confidence frame cannot flip it.
const confidenceThreshold = 0.5

// DefaultRecentLimit bounds the recent-observation ring.
const DefaultRecentLimit = 64

// Store ingests emotion observations published by an external sampler,
// smooths per-label confidence with an EMA, and exposes the last-known
// emotion plus a bounded recent history for polling. Safe for concurrent
// use; the sampler runs on its own schedule, unsynchronized with chat.
type Store struct {
	mu          sync.Mutex
	alpha       float64
	limit       int
	smoothed    map[string]float64
	last        mood.Observation
	hasLast     bool
	recent      []mood.Observation
	subscribers map[chan mood.Observation]struct{}
	logger      *zap.Logger
}

// NewStore builds an empty store. alpha outside (0,1] falls back to 1
// (no smoothing); limit <= 0 falls back to the default ring size.
func NewStore(alpha float64, limit int, logger *zap.Logger) *Store {
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		alpha:       alpha,
		limit:       limit,
		smoothed:    make(map[string]float64),
		recent:      make([]mood.Observation, 0, limit),
		subscribers: make(map[chan mood.Observation]struct{}),
		logger:      logger,
	}
}

// Publish records one raw observation and returns the smoothed view that
// was stored. The last-known emotion only moves when the dominant smoothed
// confidence clears the threshold.
func (s *Store) Publish(observation mood.Observation) mood.Observation {
	emotion := strings.ToLower(strings.TrimSpace(observation.Emotion))
	timestamp := observation.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	s.mu.Lock()

	s.smoothed[emotion] = s.alpha*observation.Confidence + (1-s.alpha)*s.smoothed[emotion]

	dominant := emotion
	best := s.smoothed[emotion]
	for label, confidence := range s.smoothed {
		if confidence > best {
			dominant = label
			best = confidence
		}
	}

	if best > confidenceThreshold {
		s.last = mood.Observation{Emotion: dominant, Confidence: best, Timestamp: timestamp}
		s.hasLast = true
	}

	stored := mood.Observation{Emotion: dominant, Confidence: best, Timestamp: timestamp}
	s.recent = append(s.recent, stored)
	if len(s.recent) > s.limit {
		overflow := len(s.recent) - s.limit
		s.recent = append(s.recent[:0:0], s.recent[overflow:]...)
	}

	// Sends stay under the lock so Unsubscribe cannot close a channel
	// mid-send. They are non-blocking: a slow consumer drops frames
	// rather than stalling the sampler.
	for ch := range s.subscribers {
		select {
		case ch <- stored:
		default:
		}
	}
	s.mu.Unlock()

	s.logger.Debug("mood observation recorded",
		zap.String("emotion", stored.Emotion),
		zap.Float64("confidence", stored.Confidence))

	return stored
}

// Latest returns the last-known observation, or ok=false before any sample
// has cleared the confidence threshold.
func (s *Store) Latest() (mood.Observation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// Recent returns a copy of the bounded observation ring, oldest first.
func (s *Store) Recent() []mood.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]mood.Observation, len(s.recent))
	copy(copied, s.recent)
	return copied
}

// Subscribe registers a live feed channel. Callers must Unsubscribe when
// done or the channel leaks for the process lifetime.
func (s *Store) Subscribe() chan mood.Observation {
	ch := make(chan mood.Observation, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a live feed channel.
func (s *Store) Unsubscribe(ch chan mood.Observation) {
	s.mu.Lock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.mu.Unlock()
}
