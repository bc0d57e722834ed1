package handlers

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"polychat/internal/ai"
	"polychat/internal/cache"
	"polychat/internal/chat"
	"polychat/internal/store/sqlstore"
)

// Handler carries the shared dependencies for all routes. Everything is
// injected by the process owner; there is no package-level state.
type Handler struct {
	Registry     *ai.Registry
	Store        *chat.Store
	Archive      *sqlstore.Archive // nil disables archiving
	Replies      cache.ReplyCache  // nil disables the reply cache
	SystemPrompt string
	JWTSecret    string

	tracer    trace.Tracer
	chatTurns metric.Int64Counter
}

func NewHandler(reg *ai.Registry, store *chat.Store, archive *sqlstore.Archive, replies cache.ReplyCache, systemPrompt, jwtSecret string) *Handler {
	meter := otel.Meter("polychat/httpapi")
	chatTurns, err := meter.Int64Counter("polychat.chat.turns",
		metric.WithDescription("completed chat turns, by provider and outcome"))
	if err != nil {
		slog.Warn("chat turn counter unavailable", "error", err)
	}

	return &Handler{
		Registry:     reg,
		Store:        store,
		Archive:      archive,
		Replies:      replies,
		SystemPrompt: systemPrompt,
		JWTSecret:    jwtSecret,
		tracer:       otel.Tracer("polychat/httpapi"),
		chatTurns:    chatTurns,
	}
}
