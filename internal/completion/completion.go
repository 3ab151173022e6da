// Package completion talks to a hosted text-completion model.
package completion

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

	"github.com/dom/mama-respira/internal/metrics"
	"github.com/tidwall/gjson"
)

const (
	anthropicVersion = "2023-06-01"
	maxErrorBody     = 4 << 10
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("completion: disabled")

// Completer produces a single text completion for prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// Disabled always fails so callers take their fallback path.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string, int) (string, error) {
	metrics.RecordCompletion("disabled")
	return "", ErrDisabled
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// New returns a Client, or Disabled when cfg has no API key.
func New(cfg Config) Completer {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	text, err := c.complete(ctx, system, prompt, maxTokens)
	if err != nil {
		metrics.RecordCompletion("error")
		return "", err
	}
	metrics.RecordCompletion("success")
	return text, nil
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("completion: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("completion: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("completion: status %d: %s", resp.StatusCode, msg)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("completion: read response: %w", err)
	}

	var parts []string
	gjson.GetBytes(raw, `content.#(type=="text")#.text`).ForEach(func(_, v gjson.Result) bool {
		parts = append(parts, v.String())
		return true
	})
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", errors.New("completion: empty response")
	}
	return text, nil
}
