// Package llm talks to an OpenAI-compatible Chat Completions endpoint.
// Any server that implements the wire format works (OpenAI, OpenRouter,
// vLLM, Ollama, llama.cpp).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/autopulse/backend/internal/config"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

// Enabled reports whether an API key is configured. Without one every
// Complete call fails and callers fall back to template text.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Chat Completions wire format (request/response subset we use)
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a non-streaming request and returns the generated text.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("llm: no API key configured")
	}

	wireReq := chatRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(wireReq)
	if err != nil {
		return "", fmt.Errorf("llm: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: sending request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		// Capture a snippet of the error body for diagnostics
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return "", fmt.Errorf("llm: HTTP %d: %s", httpResp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var wireResp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&wireResp); err != nil {
		return "", fmt.Errorf("llm: decoding response: %w", err)
	}
	if len(wireResp.Choices) == 0 {
		return "", fmt.Errorf("llm: response contained no choices")
	}

	text := strings.TrimSpace(wireResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("llm: response contained empty content")
	}
	return text, nil
}
