package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/calmana/backend/internal/service/chat"
	"github.com/calmana/backend/pkg/utils"
)

// Handler exposes the conversation core over REST.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/history", h.handleHistory)
	r.Get("/moods", h.handleMoods)
	r.Post("/reset", h.handleReset)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.Send(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		if errors.Is(err, chatservice.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, "message is required")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"reply":   reply.Text,
		"emotion": string(reply.Emotion),
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, turns := h.chatSvc.Store().History(r.URL.Query().Get("sessionId"))

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"turns":     turns,
	})
}

func (h *Handler) handleMoods(w http.ResponseWriter, r *http.Request) {
	tally := h.chatSvc.Store().Moods(r.URL.Query().Get("sessionId"))
	utils.RespondJSON(w, http.StatusOK, tally)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}

	// Body is optional: reset with no body targets the default session.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := h.chatSvc.Store().Reset(payload.SessionID)

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"sessionId": sessionID,
	})
}
