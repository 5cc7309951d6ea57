package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ollamaClient speaks the local Ollama chat API directly. There is no
// official SDK, so the request and response shapes are declared here.
type ollamaClient struct {
	http            *http.Client
	baseURL         string
	model           string
	temperature     float64
	maxOutputTokens int
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  map[string]any      `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Error   string            `json:"error"`
}

func newOllamaClient(baseURL, model string, temperature float64, maxOutputTokens int, timeout time.Duration) *ollamaClient {
	return &ollamaClient{
		http:            &http.Client{Timeout: timeout},
		baseURL:         strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
	}
}

func (c *ollamaClient) Provider() string {
	return "ollama"
}

func (c *ollamaClient) Model() string {
	return c.model
}

func (c *ollamaClient) Generate(ctx context.Context, prompt Prompt) (string, error) {
	chat := ollamaChatRequest{Model: c.model, Stream: false}
	if strings.TrimSpace(prompt.System) != "" {
		chat.Messages = append(chat.Messages, ollamaChatMessage{Role: "system", Content: prompt.System})
	}
	if strings.TrimSpace(prompt.User) != "" {
		chat.Messages = append(chat.Messages, ollamaChatMessage{Role: "user", Content: prompt.User})
	}
	if len(chat.Messages) == 0 {
		return "", fmt.Errorf("empty prompt")
	}
	if c.temperature > 0 || c.maxOutputTokens > 0 {
		chat.Options = map[string]any{}
		if c.temperature > 0 {
			chat.Options["temperature"] = c.temperature
		}
		if c.maxOutputTokens > 0 {
			chat.Options["num_predict"] = c.maxOutputTokens
		}
	}

	body, err := json.Marshal(chat)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama error (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed ollamaChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("ollama response: %w", err)
	}
	if strings.TrimSpace(parsed.Error) != "" {
		return "", fmt.Errorf("ollama error: %s", parsed.Error)
	}

	text := strings.TrimSpace(parsed.Message.Content)
	if text == "" {
		return "", fmt.Errorf("ollama response had no content")
	}
	return text, nil
}
