package ai

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn as handed to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a single remote LLM backend. Chat sends the conversation window
// plus an optional system instruction and returns the assistant reply text.
type Provider interface {
	Chat(ctx context.Context, messages []Message, system string) (string, error)
	ModelName() string
}

// filterRoles drops anything that is not a user or assistant turn. Providers
// reject unknown roles, and the window may only ever carry these two.
func filterRoles(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleUser || m.Role == RoleAssistant {
			out = append(out, m)
		}
	}
	return out
}
