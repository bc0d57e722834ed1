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

const DefaultHuggingFaceModel = "mistralai/Mixtral-8x7B-Instruct-v0.1"

// HuggingFaceProvider talks to the Inference API's raw text-generation
// endpoint. There is no structured message list; the conversation window is
// rendered into a single "System:/User:/Assistant:" transcript prompt.
type HuggingFaceProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfGenReq struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGenResp []struct {
	GeneratedText string `json:"generated_text"`
}

type hfErrResp struct {
	Error string `json:"error"`
}

func NewHuggingFaceProvider(baseURL, apiKey, model string) (*HuggingFaceProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("huggingface: api key is required")
	}
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultHuggingFaceModel
	}
	return &HuggingFaceProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}, nil
}

func (p *HuggingFaceProvider) ModelName() string { return p.Model }

// buildPrompt flattens the window into a text transcript ending with an open
// assistant turn for the model to complete.
func buildPrompt(messages []Message, system string) string {
	var sb strings.Builder
	if system != "" {
		sb.WriteString("System: ")
		sb.WriteString(system)
		sb.WriteString("\n\n")
	}
	for _, m := range filterRoles(messages) {
		if m.Role == RoleUser {
			sb.WriteString("User: ")
		} else {
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Assistant:")
	return sb.String()
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, messages []Message, system string) (string, error) {
	if p.Client == nil {
		return "", errors.New("huggingface: http client is nil")
	}

	reqBody := hfGenReq{
		Inputs: buildPrompt(messages, system),
		Parameters: hfParameters{
			MaxNewTokens:   500,
			Temperature:    0.7,
			ReturnFullText: false,
		},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s", strings.TrimRight(p.BaseURL, "/"), p.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		var decoded hfErrResp
		if json.Unmarshal(body, &decoded) == nil && decoded.Error != "" {
			return "", fmt.Errorf("huggingface: %s", decoded.Error)
		}
		return "", fmt.Errorf("huggingface: status %d", resp.StatusCode)
	}

	var decoded hfGenResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded) == 0 {
		return "", errors.New("huggingface: empty response")
	}
	return strings.TrimSpace(decoded[0].GeneratedText), nil
}
