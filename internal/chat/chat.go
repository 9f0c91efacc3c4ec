// Package chat proxies the support-chat widget to the Anthropic messages
// API. The API key stays inside this client; it is never exposed to the
// browser.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	model          = "claude-3-5-haiku-20241022"
	maxTokens      = 1024
	apiVersion     = "2023-06-01"
)

// Message is one turn of the support conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Conf struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewConf reads ANTHROPIC_API_KEY from the environment. ANTHROPIC_BASE_URL
// overrides the endpoint, which the tests use.
func NewConf() (*Conf, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	baseURL := os.Getenv("ANTHROPIC_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Conf{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends the conversation upstream and returns the assistant's reply.
func (c *Conf) Complete(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling messages api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("messages api returned %s", resp.Status)
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("error decoding messages response: %w", err)
	}
	if len(decoded.Content) == 0 {
		return "", fmt.Errorf("messages response has no content")
	}

	return decoded.Content[0].Text, nil
}
