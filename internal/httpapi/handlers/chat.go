package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"polychat/internal/chat"
	"polychat/internal/common"
	"polychat/internal/httpapi/middleware"
)

type initializeReq struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

// Initialize builds a provider adapter for the caller's session. When adapter
// construction fails, any existing session under the same id is left as it
// was: the new session is never stored.
func (h *Handler) Initialize(c *gin.Context) {
	var req initializeReq
	_ = c.ShouldBindJSON(&req) // allow sparse bodies; defaults below
	if req.Provider == "" {
		req.Provider = "openai"
	}
	provider := strings.ToLower(strings.TrimSpace(req.Provider))

	sid, ok := middleware.SessionID(c)
	if !ok {
		var err error
		sid, err = middleware.IssueSession(c, h.JWTSecret)
		if err != nil {
			common.Fail(c, http.StatusInternalServerError, "failed to create session")
			return
		}
	}

	adapter, err := h.Registry.Get(provider, req.APIKey, req.Model)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	sess := chat.NewSession(provider, adapter, h.Replies)
	h.Store.Put(sid, sess)

	if h.Archive != nil {
		if err := h.Archive.RecordSession(c.Request.Context(), sid, provider, adapter.ModelName()); err != nil {
			slog.Warn("archive session failed", "session_id", sid, "error", err)
		}
	}

	slog.Info("session initialized",
		"session_id", sid,
		"provider", provider,
		"model", adapter.ModelName(),
		"request_id", c.GetString(middleware.RequestIDKey),
	)

	common.OK(c, gin.H{
		"message": fmt.Sprintf("Chatbot initialized with %s", provider),
		"model":   adapter.ModelName(),
	})
}

type chatReq struct {
	Message string `json:"message"`
}

// Chat runs one conversation turn. A provider fault is absorbed into the
// transcript as an "Error: ..." assistant turn; the failed flag in the
// response is the only structured signal that the reply is not real output.
func (h *Handler) Chat(c *gin.Context) {
	sid, ok := middleware.SessionID(c)
	if !ok {
		common.Fail(c, http.StatusBadRequest, "Chatbot not initialized")
		return
	}
	sess, ok := h.Store.Get(sid)
	if !ok {
		common.Fail(c, http.StatusBadRequest, "Chatbot not initialized")
		return
	}

	var req chatReq
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Message) == "" {
		common.Fail(c, http.StatusBadRequest, "Empty message")
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "chat.turn")
	reply, failed := sess.Chat(ctx, req.Message, h.SystemPrompt)
	span.End()

	if h.chatTurns != nil {
		h.chatTurns.Add(c.Request.Context(), 1, metric.WithAttributes(
			attribute.String("provider", sess.Provider()),
			attribute.Bool("failed", failed),
		))
	}

	if h.Archive != nil {
		if err := h.Archive.RecordTurn(c.Request.Context(), sid, req.Message, reply, failed); err != nil {
			slog.Warn("archive turn failed", "session_id", sid, "error", err)
		}
	}

	if failed {
		slog.Warn("provider call failed",
			"session_id", sid,
			"provider", sess.Provider(),
			"request_id", c.GetString(middleware.RequestIDKey),
		)
	}

	common.OK(c, gin.H{
		"response": reply,
		"failed":   failed,
		"history":  sess.History(),
	})
}

// Clear wipes the conversation but keeps the session configured.
func (h *Handler) Clear(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		common.Fail(c, http.StatusBadRequest, "No active session")
		return
	}
	sess.Clear()
	common.OK(c, nil)
}

func (h *Handler) Summary(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		common.Fail(c, http.StatusBadRequest, "No active session")
		return
	}
	common.OK(c, gin.H{"summary": sess.Summary()})
}

// RemoveSession tears the session down entirely.
func (h *Handler) RemoveSession(c *gin.Context) {
	sid, ok := middleware.SessionID(c)
	if !ok || !h.Store.Remove(sid) {
		common.Fail(c, http.StatusBadRequest, "No active session")
		return
	}
	common.OK(c, nil)
}

func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

func (h *Handler) session(c *gin.Context) (*chat.Session, bool) {
	sid, ok := middleware.SessionID(c)
	if !ok {
		return nil, false
	}
	return h.Store.Get(sid)
}
