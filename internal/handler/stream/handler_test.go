package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calmana/backend/internal/analysis/crisis"
	"github.com/calmana/backend/internal/analysis/lexicon"
	"github.com/calmana/backend/internal/service/ai"
	chatservice "github.com/calmana/backend/internal/service/chat"
	"github.com/calmana/backend/internal/service/session"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, []ai.Message) (string, error) {
	return s.reply, s.err
}

func setupRouter(completer ai.Completer) *chi.Mux {
	store := session.NewStore(16, session.NewUTCTurn(uuid.NewString))
	svc := chatservice.NewService(
		store,
		lexicon.NewMatcher(lexicon.Default()),
		crisis.MustDetector(crisis.DefaultPatterns()),
		ai.NewComposer("", 0),
		completer,
		time.Second,
		nil,
	)

	r := chi.NewRouter()
	New(svc, nil).RegisterRoutes(r)
	return r
}

func TestStreamMissingMessage(t *testing.T) {
	r := setupRouter(&stubCompleter{reply: "hi"})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?sessionId=s1", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStreamDeliversReplyEvents(t *testing.T) {
	r := setupRouter(&stubCompleter{reply: "you are not alone"})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?sessionId=s1&message=I+feel+sad", nil))

	if got := resp.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", got)
	}

	body := resp.Body.String()
	for _, fragment := range []string{`"event":"start"`, "you are not alone", `"emotion":"sad"`, `"event":"end"`} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected %s in stream body:\n%s", fragment, body)
		}
	}
}

func TestStreamFallbackOnProviderFailure(t *testing.T) {
	r := setupRouter(&stubCompleter{err: errors.New("unreachable")})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?message=hello", nil))

	body := resp.Body.String()
	if !strings.Contains(body, "grounding exercise") {
		t.Fatalf("expected fallback text in stream body:\n%s", body)
	}
	if !strings.Contains(body, `"event":"end"`) {
		t.Fatalf("stream must still end cleanly:\n%s", body)
	}
}

func TestStreamCrisisShortCircuit(t *testing.T) {
	r := setupRouter(&stubCompleter{reply: "unused"})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?message=i+want+to+die", nil))

	body := resp.Body.String()
	if !strings.Contains(body, "988") {
		t.Fatalf("expected crisis resource text in stream body:\n%s", body)
	}
	if !strings.Contains(body, `"emotion":"sad"`) {
		t.Fatalf("crisis stream must report sad:\n%s", body)
	}
}
