package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultClaudeModel = "claude-3-opus-20240229"

// anthropicVersion is the pinned API revision sent on every request.
const anthropicVersion = "2023-06-01"

type ClaudeProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

type claudeMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeChatReq struct {
	Model       string      `json:"model"`
	MaxTokens   int         `json:"max_tokens"`
	Temperature float64     `json:"temperature"`
	System      string      `json:"system,omitempty"`
	Messages    []claudeMsg `json:"messages"`
}

type claudeChatResp struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewClaudeProvider(baseURL, apiKey, model string) (*ClaudeProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("claude: api key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}, nil
}

func (p *ClaudeProvider) ModelName() string { return p.Model }

func (p *ClaudeProvider) Chat(ctx context.Context, messages []Message, system string) (string, error) {
	if p.Client == nil {
		return "", errors.New("claude: http client is nil")
	}
	if system == "" {
		system = "You are a helpful AI assistant."
	}

	msgs := make([]claudeMsg, 0, len(messages))
	for _, m := range filterRoles(messages) {
		msgs = append(msgs, claudeMsg{Role: m.Role, Content: m.Content})
	}

	reqBody := claudeChatReq{
		Model:       p.Model,
		MaxTokens:   2000,
		Temperature: 0.7,
		System:      system,
		Messages:    msgs,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/messages", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("claude: %s", msg)
	}

	var decoded claudeChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Content) == 0 {
		return "", errors.New("claude: empty response")
	}
	return decoded.Content[0].Text, nil
}
