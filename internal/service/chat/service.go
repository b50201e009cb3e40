package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calmana/backend/internal/analysis/crisis"
	"github.com/calmana/backend/internal/analysis/lexicon"
	chatmodel "github.com/calmana/backend/internal/model/chat"
	"github.com/calmana/backend/internal/service/ai"
	"github.com/calmana/backend/internal/service/session"
)

// ErrEmptyMessage rejects requests whose message is blank after trimming.
// It is the only error this service surfaces to callers.
var ErrEmptyMessage = errors.New("message is required")

// CrisisResponse is the fixed, pre-vetted reply for high-risk messages.
// It is never generated by, and never depends on, the LLM collaborator.
const CrisisResponse = "I'm really concerned about what you just shared. You deserve support right now, " +
	"and you don't have to go through this alone. Please reach out to someone you trust, " +
	"or contact a crisis line such as the 988 Suicide & Crisis Lifeline (call or text 988) " +
	"or your local emergency number. If you are in immediate danger, please call emergency services. " +
	"I'm here to listen, but a trained counselor can support you best right now."

// FallbackResponse stands in for the model whenever the collaborator fails,
// so the chat surface never goes silent during an outage.
const FallbackResponse = "I'm having trouble connecting right now, but I'm still here with you. " +
	"While we wait, let's try a quick grounding exercise: take a slow, deep breath, " +
	"then name five things you can see, four you can touch, three you can hear, " +
	"two you can smell, and one you can taste. Take your time - we can continue whenever you're ready."

// Reply is the outcome of one processed turn.
type Reply struct {
	SessionID string        `json:"sessionId"`
	Text      string        `json:"reply"`
	Emotion   lexicon.Label `json:"emotion"`
	Crisis    bool          `json:"-"`
}

// Service is the turn orchestrator: crisis gate, emotion tally, prompt
// composition, collaborator call with fallback, and history bookkeeping.
type Service struct {
	store     *session.Store
	matcher   *lexicon.Matcher
	detector  *crisis.Detector
	composer  *ai.Composer
	completer ai.Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// NewService wires the orchestrator. A nil completer degrades to the
// disabled provider, so chat keeps answering with the fallback reply.
func NewService(store *session.Store, matcher *lexicon.Matcher, detector *crisis.Detector, composer *ai.Composer, completer ai.Completer, timeout time.Duration, logger *zap.Logger) *Service {
	if completer == nil {
		completer = ai.Disabled{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		matcher:   matcher,
		detector:  detector,
		composer:  composer,
		completer: completer,
		timeout:   timeout,
		logger:    logger,
	}
}

// Store exposes the session store for read-side handlers.
func (s *Service) Store() *session.Store {
	return s.store
}

// Send processes one user message to completion and returns the reply.
func (s *Service) Send(ctx context.Context, sessionID, message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrEmptyMessage
	}
	sessionID = s.store.GetOrCreate(sessionID)

	if reply, ok := s.crisisShortCircuit(sessionID, message); ok {
		return reply, nil
	}

	label := s.classifyAndRecord(sessionID, message)

	_, history := s.store.History(sessionID)
	prompt := s.composer.Compose(history, message)

	text := s.completeWithFallback(ctx, sessionID, prompt)
	s.store.AppendTurn(sessionID, chatmodel.RoleAssistant, text)

	return Reply{SessionID: sessionID, Text: text, Emotion: label}, nil
}

// SendStream behaves exactly like Send but forwards reply fragments through
// onDelta as they arrive. The crisis and fallback paths emit their fixed
// text as a single fragment.
func (s *Service) SendStream(ctx context.Context, sessionID, message string, onDelta func(delta string)) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrEmptyMessage
	}
	sessionID = s.store.GetOrCreate(sessionID)

	if reply, ok := s.crisisShortCircuit(sessionID, message); ok {
		if onDelta != nil {
			onDelta(reply.Text)
		}
		return reply, nil
	}

	label := s.classifyAndRecord(sessionID, message)

	_, history := s.store.History(sessionID)
	prompt := s.composer.Compose(history, message)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var text string
	var err error
	if streamer, ok := s.completer.(ai.Streamer); ok {
		text, err = streamer.Stream(callCtx, prompt, onDelta)
	} else {
		text, err = s.completer.Complete(callCtx, prompt)
		if err == nil && onDelta != nil {
			onDelta(text)
		}
	}

	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			s.logger.Warn("llm call failed, substituting fallback reply",
				zap.String("sessionId", sessionID), zap.Error(err))
		}
		text = FallbackResponse
		if onDelta != nil {
			onDelta(text)
		}
	}
	text = strings.TrimSpace(text)

	s.store.AppendTurn(sessionID, chatmodel.RoleAssistant, text)
	return Reply{SessionID: sessionID, Text: text, Emotion: label}, nil
}

// crisisShortCircuit handles high-risk messages: forced "sad" tally, both
// turns recorded, fixed response, no collaborator call.
func (s *Service) crisisShortCircuit(sessionID, message string) (Reply, bool) {
	if !s.detector.Detect(message) {
		return Reply{}, false
	}

	s.store.IncrementMood(sessionID, lexicon.Sad)
	s.store.AppendTurn(sessionID, chatmodel.RoleUser, message)
	s.store.AppendTurn(sessionID, chatmodel.RoleAssistant, CrisisResponse)

	s.logger.Info("crisis phrase detected, returning fixed response",
		zap.String("sessionId", sessionID))

	return Reply{SessionID: sessionID, Text: CrisisResponse, Emotion: lexicon.Sad, Crisis: true}, true
}

func (s *Service) classifyAndRecord(sessionID, message string) lexicon.Label {
	label := s.matcher.Match(message)
	s.store.IncrementMood(sessionID, label)
	s.store.AppendTurn(sessionID, chatmodel.RoleUser, message)
	return label
}

// completeWithFallback calls the collaborator under the configured timeout
// and absorbs every failure into the fixed fallback reply.
func (s *Service) completeWithFallback(ctx context.Context, sessionID string, prompt []ai.Message) string {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.completer.Complete(callCtx, prompt)
	if err != nil {
		s.logger.Warn("llm call failed, substituting fallback reply",
			zap.String("sessionId", sessionID), zap.Error(err))
		return FallbackResponse
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Warn("llm returned empty completion, substituting fallback reply",
			zap.String("sessionId", sessionID))
		return FallbackResponse
	}
	return text
}
