// Package intake models the landing page's network behavior against the
// waitlist service: one POST per sign-up, with all resilience (retry,
// backoff, offline fallback) on this side of the wire.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/videoscale/waitlist-api/pkg/circuitbreaker"
	"github.com/videoscale/waitlist-api/pkg/retry"
)

type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Submission is the intake request body.
type Submission struct {
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source,omitempty"`
}

// SubmitResponse is the service's success envelope.
type SubmitResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// AlreadyRegistered reports whether the service absorbed the submission as
// a duplicate.
func (r *SubmitResponse) AlreadyRegistered() bool {
	return r.Message == "Email already registered"
}

type Config struct {
	// BaseURL of the waitlist service, e.g. "https://api.example.com".
	BaseURL string
	// Source tags every submission with the originating campaign.
	Source string
	// Outbox receives submissions the service did not accept. Optional.
	Outbox *Outbox
	// HTTPClient defaults to one with a 10s timeout.
	HTTPClient *http.Client
	// Retry configures the backoff used by Flush. Optional.
	Retry *retry.Config
	// Breaker stops hammering a service that keeps failing. Optional.
	Breaker circuitbreaker.CircuitBreaker
	Logger  Logger
}

type Client struct {
	baseURL    string
	source     string
	outbox     *Outbox
	httpClient *http.Client
	backoff    retry.RetryPolicy
	breaker    circuitbreaker.CircuitBreaker
	logger     Logger
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("intake: base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	breaker := cfg.Breaker
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(nil)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		source:     cfg.Source,
		outbox:     cfg.Outbox,
		httpClient: httpClient,
		backoff:    retry.NewExponentialBackoff(cfg.Retry),
		breaker:    breaker,
		logger:     cfg.Logger,
	}, nil
}

// Submit sends one email to the waitlist service. On failure the submission
// is queued in the outbox (when configured) and the error is returned; the
// caller decides what to show the user.
func (c *Client) Submit(ctx context.Context, email string) (*SubmitResponse, error) {
	sub := Submission{
		Email:     email,
		Timestamp: time.Now().Format(time.RFC3339),
		Source:    c.source,
	}

	var response *SubmitResponse
	err := c.breaker.Call(func() error {
		var postErr error
		response, postErr = c.post(ctx, sub)
		return postErr
	})
	if err != nil {
		if c.outbox != nil {
			if queueErr := c.outbox.Add(sub); queueErr != nil {
				c.logError("Failed to queue offline backup", "error", queueErr)
			} else {
				c.logWarn("Submission queued for later delivery", "source", sub.Source)
			}
		}
		return nil, err
	}

	return response, nil
}

// Flush replays queued submissions with exponential backoff. Records are
// removed only once the service accepts them (created or duplicate).
func (c *Client) Flush(ctx context.Context) error {
	if c.outbox == nil {
		return nil
	}

	pending, err := c.outbox.Pending()
	if err != nil {
		return err
	}

	for _, record := range pending {
		sub := Submission{Email: record.Email, Timestamp: record.Timestamp, Source: record.Source}

		err := c.backoff.Execute(func() error {
			return c.breaker.Call(func() error {
				_, postErr := c.post(ctx, sub)
				return postErr
			})
		})
		if err != nil {
			c.logWarn("Pending submission still undeliverable", "error", err)
			continue
		}

		if err := c.outbox.Remove(record.Email); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) post(ctx context.Context, sub Submission) (*SubmitResponse, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("intake: encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/waitlist", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("intake: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intake: post submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("intake: service unavailable: status %d", resp.StatusCode)
	}

	var out SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("intake: decode response: %w", err)
	}

	return &out, nil
}

func (c *Client) logWarn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *Client) logError(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Error(msg, args...)
	}
}
