package chat

import (
	"context"
	"sync"

	"polychat/internal/ai"
	"polychat/internal/cache"
)

// ContextWindow caps how many of the most recent turns are handed to a
// provider call. Older turns stay in history but are never re-sent.
const ContextWindow = 20

// ErrorReplyPrefix marks an absorbed provider failure stored in history in
// place of a real assistant reply.
const ErrorReplyPrefix = "Error: "

// Session owns one conversation and the provider adapter it talks through.
// All operations hold the session lock for their full duration, so two
// requests racing on the same session id serialize rather than interleave.
type Session struct {
	mu       sync.Mutex
	provider string
	adapter  ai.Provider
	replies  cache.ReplyCache // optional
	history  []Message
}

type Summary struct {
	TotalMessages int    `json:"total_messages"`
	UserMessages  int    `json:"user_messages"`
	AIMessages    int    `json:"ai_messages"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
}

// NewSession pairs a constructed provider adapter with an empty history.
// replies may be nil to disable reply caching.
func NewSession(provider string, adapter ai.Provider, replies cache.ReplyCache) *Session {
	return &Session{provider: provider, adapter: adapter, replies: replies}
}

func (s *Session) Provider() string { return s.provider }
func (s *Session) Model() string    { return s.adapter.ModelName() }

// Chat runs one turn: the user message is appended first, the provider is
// called with the window including that message, and whatever comes back --
// the reply, or an absorbed error rendered with ErrorReplyPrefix -- is
// appended as the assistant turn. failed reports whether the reply is an
// absorbed error rather than real assistant output.
func (s *Session) Chat(ctx context.Context, text, system string) (reply string, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, newMessage(RoleUser, text))
	window := s.windowLocked()

	var key string
	if s.replies != nil {
		key = cache.Key(system, window)
		if cached, ok := s.replies.Get(ctx, key); ok {
			s.history = append(s.history, newMessage(RoleAssistant, cached))
			return cached, false
		}
	}

	reply, err := s.adapter.Chat(ctx, window, system)
	if err != nil {
		reply = ErrorReplyPrefix + err.Error()
		failed = true
	} else if s.replies != nil {
		s.replies.Set(ctx, key, reply)
	}

	s.history = append(s.history, newMessage(RoleAssistant, reply))
	return reply, failed
}

// windowLocked maps the most recent ContextWindow turns to provider messages.
// Caller must hold s.mu.
func (s *Session) windowLocked() []ai.Message {
	start := 0
	if len(s.history) > ContextWindow {
		start = len(s.history) - ContextWindow
	}
	out := make([]ai.Message, 0, len(s.history)-start)
	for _, m := range s.history[start:] {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// Clear drops the conversation. Provider, model and credential stay intact.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// Summary scans the full history, not just the provider window.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		TotalMessages: len(s.history),
		Provider:      s.provider,
		Model:         s.adapter.ModelName(),
	}
	for _, m := range s.history {
		switch m.Role {
		case RoleUser:
			sum.UserMessages++
		case RoleAssistant:
			sum.AIMessages++
		}
	}
	return sum
}

// History returns a copy of the full conversation.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.history...)
}
