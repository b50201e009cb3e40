package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/calmana/backend/internal/analysis/crisis"
	"github.com/calmana/backend/internal/analysis/lexicon"
	"github.com/calmana/backend/internal/config"
	"github.com/calmana/backend/internal/handler"
	"github.com/calmana/backend/internal/service/ai"
	chatservice "github.com/calmana/backend/internal/service/chat"
	moodservice "github.com/calmana/backend/internal/service/mood"
	"github.com/calmana/backend/internal/service/session"
	"github.com/calmana/backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Log.FilePath, cfg.Log.Prod)
	defer zlog.Sync()

	completer := newCompleter(ctx, cfg.LLM, zlog)

	store := session.NewStore(cfg.Chat.MaxTurns, session.NewUTCTurn(uuid.NewString))
	matcher := lexicon.NewMatcher(lexicon.Default())
	detector := crisis.MustDetector(crisis.DefaultPatterns())
	composer := ai.NewComposer(cfg.Chat.SystemPrompt, 2*cfg.Chat.MaxTurns)

	chatSvc := chatservice.NewService(
		store, matcher, detector, composer, completer,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second, zlog,
	)

	moodStore := moodservice.NewStore(cfg.Mood.SmoothingAlpha, cfg.Mood.RecentLimit, zlog)

	router := handler.NewRouter(chatSvc, moodStore, zlog)

	startServer(ctx, cfg.Server, router, zlog)
}

// newCompleter selects the LLM provider. Misconfiguration degrades to the
// disabled provider so the service still starts and chat answers with the
// fallback reply.
func newCompleter(ctx context.Context, cfg config.LLMConfig, zlog *zap.Logger) ai.Completer {
	switch {
	case cfg.Provider == config.ProviderArk && cfg.ArkEnabled():
		completer, err := ai.NewArkCompleter(ctx, cfg)
		if err != nil {
			zlog.Warn("failed to initialize ark provider, chat will use the fallback reply", zap.Error(err))
			return ai.Disabled{}
		}
		zlog.Info("llm provider initialized", zap.String("provider", config.ProviderArk))
		return completer
	case cfg.Provider == config.ProviderOpenAI && cfg.OpenAIEnabled():
		completer, err := ai.NewOpenAICompleter(cfg)
		if err != nil {
			zlog.Warn("failed to initialize openai provider, chat will use the fallback reply", zap.Error(err))
			return ai.Disabled{}
		}
		zlog.Info("llm provider initialized", zap.String("provider", config.ProviderOpenAI))
		return completer
	default:
		zlog.Warn("no usable llm credentials, chat will use the fallback reply",
			zap.String("provider", cfg.Provider))
		return ai.Disabled{}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, zlog *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zlog.Info("calmana backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
