// Package ai wraps the text-generation service behind a narrow
// request/response contract and provides the JSON recovery and retry
// helpers shared by clustering and synthesis.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dalatbot/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// TextGenerator is the capability the pipeline needs from the
// text-generation service.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Message is a chat message for the completions API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Client is a thin wrapper over an OpenAI-compatible chat completions API.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewClient constructs a client with sane defaults.
func NewClient(apiKey, model string, opts ...func(*Client)) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: 0.4,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL overrides the default API base URL (useful for tests and
// OpenAI-compatible gateways).
func WithBaseURL(url string) func(*Client) {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient overrides the internal HTTP client.
func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMaxTokens caps the completion size.
func WithMaxTokens(n int) func(*Client) {
	return func(c *Client) { c.maxTokens = n }
}

// NewClientFromEnv builds a client from TEXTGEN_API_KEY / TEXTGEN_MODEL /
// TEXTGEN_BASE_URL.
func NewClientFromEnv() *Client {
	return NewClient(
		config.GetEnvOrDefault("TEXTGEN_API_KEY", ""),
		config.GetEnvOrDefault("TEXTGEN_MODEL", "gpt-4o-mini"),
		WithBaseURL(config.GetEnvOrDefault("TEXTGEN_BASE_URL", "")),
	)
}

// Generate performs one chat completion and returns the raw assistant text.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("ai: missing API key")
	}

	payload := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ai: api error %d: %s", resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("ai: response missing choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
