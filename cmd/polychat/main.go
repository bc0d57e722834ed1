package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"polychat/internal/ai"
	"polychat/internal/cache"
	"polychat/internal/chat"
	"polychat/internal/config"
	"polychat/internal/httpapi"
	"polychat/internal/httpapi/handlers"
	"polychat/internal/store/sqlstore"
	"polychat/internal/telemetry"
)

func newProviderRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()
	reg.Register("openai", func(apiKey, model string) (ai.Provider, error) {
		return ai.NewOpenAIProvider(cfg.OpenAIBaseURL, apiKey, model)
	})
	reg.Register("gemini", func(apiKey, model string) (ai.Provider, error) {
		return ai.NewGeminiProvider(cfg.GeminiBaseURL, apiKey, model)
	})
	reg.Register("claude", func(apiKey, model string) (ai.Provider, error) {
		return ai.NewClaudeProvider(cfg.ClaudeBaseURL, apiKey, model)
	})
	reg.Register("huggingface", func(apiKey, model string) (ai.Provider, error) {
		return ai.NewHuggingFaceProvider(cfg.HuggingFaceBaseURL, apiKey, model)
	})
	return reg
}

func main() {
	cfg := config.Load()

	if _, err := telemetry.InitLogger(cfg.LogDir); err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _, telemetryCleanup, err := telemetry.Init(ctx, cfg.LogDir)
	if err != nil {
		log.Fatalf("init telemetry: %v", err)
	}
	defer telemetryCleanup()

	store := chat.NewStore(cfg.SessionTTL)
	defer store.Close()

	var replies cache.ReplyCache
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		defer rc.Close()
		replies = rc
		slog.Info("reply cache enabled", "addr", cfg.RedisAddr)
	}

	archive, err := sqlstore.Open(cfg.ArchiveDriver, cfg.ArchiveDSN)
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}

	h := handlers.NewHandler(newProviderRegistry(cfg), store, archive, replies, cfg.SystemPrompt, cfg.JWTSecret)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(h),
	}

	go func() {
		slog.Info("server started", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}
