package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no API key was supplied. Callers treat
// the email feature as unavailable rather than failing their own workflow.
var ErrNotConfigured = fmt.Errorf("email service not configured")

// Message is a single outbound transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Config holds connection settings for the transactional email API.
type Config struct {
	APIURL  string
	APIKey  string
	From    string
	Timeout time.Duration
}

// Client posts messages to a hosted transactional email API using
// bearer-token auth. The API accepts {from, to, subject, html} and answers
// with {id} on success or {message} on failure.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient constructs a Client. A nil http.Client gets a sane default.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, client: httpClient}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type sendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send delivers one message and returns the provider-assigned ID.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if msg.To == "" {
		return "", fmt.Errorf("recipient required")
	}

	body, err := json.Marshal(sendPayload{
		From:    c.cfg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read email response: %w", err)
	}

	var result sendResult
	if err := json.Unmarshal(raw, &result); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("decode email response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if result.Message != "" {
			return "", fmt.Errorf("email api %d: %s", resp.StatusCode, result.Message)
		}
		return "", fmt.Errorf("email api returned status %d", resp.StatusCode)
	}

	return result.ID, nil
}
