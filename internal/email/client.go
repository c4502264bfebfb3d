// Package email sends confirmation messages through an HTTP-based
// transactional email provider.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/secret"
)

// DispatchError reports a failed send: either a transport error (Cause
// set, StatusCode zero) or a non-2xx provider response.
type DispatchError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *DispatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("email dispatch failed: %v", e.Cause)
	}
	return fmt.Sprintf("email dispatch failed: provider returned status %d: %s", e.StatusCode, e.Body)
}

func (e *DispatchError) Unwrap() error { return e.Cause }

// Client is a transactional email API client. It is stateless beyond the
// held credential and base URL and safe for concurrent use. It never
// retries: retry policy belongs to the caller.
type Client struct {
	baseURL    string
	sender     domain.SubscriberEmail
	senderName string
	apiKey     secret.String
	httpClient *http.Client
}

// NewClient creates a client for the configured provider. The sender
// address has already been validated through the domain type.
func NewClient(cfg config.EmailConfig, sender domain.SubscriberEmail) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		sender:     sender,
		senderName: cfg.SenderName,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

// Provider wire format: a Messages envelope with one message carrying
// both HTML and plain-text parts.
type sendRequest struct {
	Messages []message `json:"Messages"`
}

type message struct {
	From     emailUser   `json:"From"`
	To       []emailUser `json:"To"`
	Subject  string      `json:"Subject"`
	TextPart string      `json:"TextPart"`
	HTMLPart string      `json:"HTMLPart"`
}

type emailUser struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

// Send posts a single message to the provider. Any transport error,
// timeout, or non-2xx response surfaces as a *DispatchError.
func (c *Client) Send(ctx context.Context, to domain.SubscriberEmail, subject, htmlBody, textBody string) error {
	payload := sendRequest{
		Messages: []message{{
			From:     emailUser{Email: c.sender.String(), Name: c.senderName},
			To:       []emailUser{{Email: to.String(), Name: "Subscriber"}},
			Subject:  subject,
			TextPart: textBody,
			HTMLPart: htmlBody,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DispatchError{Cause: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return &DispatchError{Cause: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.apiKey.Reveal())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DispatchError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Cap the echoed body so a misbehaving provider can't flood logs.
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &DispatchError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}
