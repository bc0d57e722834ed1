package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProvider_Chat(t *testing.T) {
	var got openAIChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Hi there"}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(srv.URL, "sk-test", "")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if p.ModelName() != DefaultOpenAIModel {
		t.Fatalf("expected default model, got %q", p.ModelName())
	}

	reply, err := p.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "Hello"},
	}, "be nice")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "Hi there" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if got.Model != DefaultOpenAIModel || got.Temperature != 0.7 || got.MaxTokens != 2000 {
		t.Fatalf("unexpected generation policy: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[0].Content != "be nice" {
		t.Fatalf("expected system message first, got %+v", got.Messages)
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "Hello" {
		t.Fatalf("unexpected user message: %+v", got.Messages[1])
	}
}

func TestOpenAIProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, _ := NewOpenAIProvider(srv.URL, "bad-key", "")
	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, "")
	if err == nil {
		t.Fatalf("expected error on 401")
	}
	if !strings.Contains(err.Error(), "openai:") {
		t.Fatalf("expected provider-prefixed error, got %v", err)
	}
}

func TestOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider("", "  ", ""); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestClaudeProvider_Chat(t *testing.T) {
	var got claudeChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-ant" {
			t.Errorf("missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "claude says hi"}},
		})
	}))
	defer srv.Close()

	p, err := NewClaudeProvider(srv.URL, "sk-ant", "")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	reply, err := p.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "again"},
	}, "")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "claude says hi" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	// System prompt goes top-level, defaulted when empty, never into messages.
	if got.System != "You are a helpful AI assistant." {
		t.Fatalf("unexpected system field: %q", got.System)
	}
	if got.MaxTokens != 2000 || got.Model != DefaultClaudeModel {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got.Messages))
	}
}

func TestGeminiProvider_Chat(t *testing.T) {
	var got geminiChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "gkey" {
			t.Errorf("missing x-goog-api-key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": "part one "}, {"text": "part two"}},
				}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(srv.URL, "gkey", "")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	reply, err := p.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}, "sys")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "part one part two" {
		t.Fatalf("expected concatenated parts, got %q", reply)
	}

	if len(got.Contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(got.Contents))
	}
	if got.Contents[0].Role != "user" || got.Contents[1].Role != "model" {
		t.Fatalf("expected user/model role mapping, got %q/%q", got.Contents[0].Role, got.Contents[1].Role)
	}
	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != "sys" {
		t.Fatalf("expected system instruction, got %+v", got.SystemInstruction)
	}
	if got.GenerationConfig == nil || got.GenerationConfig.Temperature != 0.7 {
		t.Fatalf("unexpected generation config: %+v", got.GenerationConfig)
	}
}

func TestHuggingFaceProvider_Chat(t *testing.T) {
	var got hfGenReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/models/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode([]map[string]string{{"generated_text": "  generated reply  "}})
	}))
	defer srv.Close()

	p, err := NewHuggingFaceProvider(srv.URL, "hf-key", "some/model")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	reply, err := p.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "question"},
		{Role: RoleAssistant, Content: "answer"},
		{Role: RoleUser, Content: "follow-up"},
	}, "sys")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "generated reply" {
		t.Fatalf("expected trimmed reply, got %q", reply)
	}

	want := "System: sys\n\nUser: question\n\nAssistant: answer\n\nUser: follow-up\n\nAssistant:"
	if got.Inputs != want {
		t.Fatalf("unexpected prompt:\n%q\nwant:\n%q", got.Inputs, want)
	}
	if got.Parameters.MaxNewTokens != 500 || got.Parameters.Temperature != 0.7 || got.Parameters.ReturnFullText {
		t.Fatalf("unexpected parameters: %+v", got.Parameters)
	}
}

func TestHuggingFaceProvider_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model is loading"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, _ := NewHuggingFaceProvider(srv.URL, "hf-key", "")
	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, "")
	if err == nil || !strings.Contains(err.Error(), "model is loading") {
		t.Fatalf("expected surfaced error body, got %v", err)
	}
}
