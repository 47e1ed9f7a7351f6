// Package rlm drives the recursive language-model loop: a local LLM writes
// code fragments, the sandbox executes them against the trailer index, and
// the execution output feeds the next turn until the model signals done.
package rlm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/rlm/sandbox"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/settings"
)

// Client talks to a local Ollama-compatible server via /api/chat.
type Client struct {
	endpoint  string
	model     string
	maxTokens int
	http      *http.Client
}

// NewClient builds a client from settings. TimeoutMs bounds one call.
func NewClient(cfg *settings.Settings) *Client {
	return &Client{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		http:      &http.Client{Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond},
	}
}

// WithMaxTokens returns a copy with a different completion cap. The REPL uses
// this to apply its own output-token budget.
func (c *Client) WithMaxTokens(n int) *Client {
	clone := *c
	if n > 0 {
		clone.maxTokens = n
	}
	return &clone
}

type chatRequest struct {
	Model    string            `json:"model"`
	Messages []sandbox.Message `json:"messages"`
	Stream   bool              `json:"stream"`
	Options  map[string]any    `json:"options,omitempty"`
}

type chatResponse struct {
	Message sandbox.Message `json:"message"`
	Error   string          `json:"error,omitempty"`
}

// Chat sends the conversation and returns the assistant's text.
func (c *Client) Chat(ctx context.Context, messages []sandbox.Message) (string, error) {
	body := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	}
	if c.maxTokens > 0 {
		body.Options = map[string]any{"num_predict": c.maxTokens}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading llm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decoding llm response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("llm error: %s", parsed.Error)
	}
	return parsed.Message.Content, nil
}
