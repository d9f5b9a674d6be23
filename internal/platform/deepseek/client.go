// Package deepseek is the REST client for the DeepSeek chat-completions API,
// the AI inference provider behind the forecast engine.
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/pacing"
	"github.com/cryptosift/cryptosift/internal/transport"
)

const providerKey = "deepseek"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the bearer-authenticated chat client.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *transport.Client
	pacer   *pacing.Pacer
}

// NewClient creates a DeepSeek client.
//
// baseURL is the API root, e.g. "https://api.deepseek.com".
func NewClient(baseURL, apiKey, model string, http *transport.Client, pacer *pacing.Pacer) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    http,
		pacer:   pacer,
	}
}

// chatRequest is the provider request body.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// chatResponse is the provider envelope; only the first choice is read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends one paced completion request carrying the full conversation so
// far and returns the assistant's text, trimmed.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if err := c.pacer.Wait(ctx, providerKey); err != nil {
		return "", fmt.Errorf("deepseek: pacing: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("deepseek: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("deepseek: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek: chat completion: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("deepseek: read response: %w", err)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("deepseek: decode response: %w", err)
	}

	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("deepseek: empty choices: %w", domain.ErrNoData)
	}

	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
