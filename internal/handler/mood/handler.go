package mood

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	moodmodel "github.com/calmana/backend/internal/model/mood"
	moodservice "github.com/calmana/backend/internal/service/mood"
	"github.com/calmana/backend/pkg/utils"
)

// Handler exposes the mood observation store: ingest for the external
// sampler, polling for the front-end, and a websocket live feed.
type Handler struct {
	store    *moodservice.Store
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// New creates the mood handler.
func New(store *moodservice.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the mood endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/mood/observations", h.handlePublish)
	r.Get("/mood/latest", h.handleLatest)
	r.Get("/mood/recent", h.handleRecent)
	r.Get("/mood/live", h.handleLive)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Emotion    string     `json:"emotion"`
		Confidence float64    `json:"confidence"`
		Timestamp  *time.Time `json:"timestamp"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Emotion == "" {
		utils.RespondError(w, http.StatusBadRequest, "emotion is required")
		return
	}
	if payload.Confidence < 0 || payload.Confidence > 1 {
		utils.RespondError(w, http.StatusBadRequest, "confidence must be within [0,1]")
		return
	}

	observation := moodmodel.Observation{
		Emotion:    payload.Emotion,
		Confidence: payload.Confidence,
	}
	if payload.Timestamp != nil {
		observation.Timestamp = payload.Timestamp.UTC()
	}

	stored := h.store.Publish(observation)
	utils.RespondJSON(w, http.StatusAccepted, map[string]any{
		"status":      "accepted",
		"observation": stored,
	})
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	observation, ok := h.store.Latest()
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no observation recorded yet")
		return
	}
	utils.RespondJSON(w, http.StatusOK, observation)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"observations": h.store.Recent(),
	})
}

// handleLive upgrades to a websocket and pushes every accepted observation
// until the client disconnects.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	feed := h.store.Subscribe()
	defer h.store.Unsubscribe(feed)

	// Drain client frames so close handshakes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case observation, ok := <-feed:
			if !ok {
				return
			}
			if err := conn.WriteJSON(observation); err != nil {
				h.logger.Debug("live feed write failed, closing", zap.Error(err))
				return
			}
		}
	}
}
