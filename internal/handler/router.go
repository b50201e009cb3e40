package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chathandler "github.com/calmana/backend/internal/handler/chat"
	moodhandler "github.com/calmana/backend/internal/handler/mood"
	streamhandler "github.com/calmana/backend/internal/handler/stream"
	middlewarePkg "github.com/calmana/backend/internal/middleware"
	chatservice "github.com/calmana/backend/internal/service/chat"
	moodservice "github.com/calmana/backend/internal/service/mood"
	"github.com/calmana/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatservice.Service, moodStore *moodservice.Store, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chathandler.New(chatSvc)
	moodHandler := moodhandler.New(moodStore, logger)
	streamHandler := streamhandler.New(chatSvc, logger)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		moodHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)

		api.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
