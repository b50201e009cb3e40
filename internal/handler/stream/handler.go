package stream

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatservice "github.com/calmana/backend/internal/service/chat"
	"github.com/calmana/backend/pkg/utils"
)

// Handler streams chat replies over Server-Sent Events. The orchestration
// invariants are identical to the plain chat endpoint; only the delivery
// differs.
type Handler struct {
	chatSvc *chatservice.Service
	logger  *zap.Logger
}

// New creates the stream handler.
func New(chatSvc *chatservice.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{chatSvc: chatSvc, logger: logger}
}

// RegisterRoutes mounts the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream", h.handleStream)
}

// event is one streamed frame.
type event struct {
	Event     string `json:"event"`
	SessionID string `json:"sessionId,omitempty"`
	Content   string `json:"content,omitempty"`
	Emotion   string `json:"emotion,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	sessionID := r.URL.Query().Get("sessionId")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEChunk(w, flusher, event{Event: "start", SessionID: sessionID})

	reply, err := h.chatSvc.SendStream(r.Context(), sessionID, message, func(delta string) {
		utils.SendSSEChunk(w, flusher, event{Event: "delta", Content: delta})
	})
	if err != nil {
		// Only the empty-message rejection reaches this point.
		if !errors.Is(err, chatservice.ErrEmptyMessage) {
			h.logger.Error("stream request failed", zap.Error(err))
		}
		utils.SendSSEChunk(w, flusher, event{Event: "error", Error: err.Error()})
		return
	}

	utils.SendSSEChunk(w, flusher, event{
		Event:     "emotion",
		SessionID: reply.SessionID,
		Emotion:   string(reply.Emotion),
	})
	utils.SendSSEChunk(w, flusher, event{
		Event:     "end",
		SessionID: reply.SessionID,
		Finished:  true,
	})

	h.logger.Info("stream completed",
		zap.String("sessionId", reply.SessionID),
		zap.String("emotion", string(reply.Emotion)))
}
