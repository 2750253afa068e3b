// Package assist carries the calling conventions for the external
// generative-AI collaborator: rate-limit retries with exponential backoff,
// usage telemetry and failure logging. The model client itself is opaque
// and injected by the application.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tamarel/folio/pkg/core"
)

// ErrRateLimited marks a transient quota rejection. Callers wrap their
// provider's rate-limit error with it to opt into retries.
var ErrRateLimited = errors.New("rate limited")

// Result is one model response with its token accounting.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Caller is one request/response call against the collaborator.
type Caller interface {
	Call(ctx context.Context, prompt string) (*Result, error)
}

// Client wraps a Caller with the library's calling conventions.
type Client struct {
	svc         *core.Service
	caller      Caller
	model       string
	logger      *slog.Logger
	maxAttempts int
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMaxAttempts bounds rate-limit retries (default 4).
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// NewClient creates a Client recording telemetry through svc.
func NewClient(svc *core.Service, caller Caller, model string, opts ...Option) *Client {
	c := &Client{svc: svc, caller: caller, model: model, maxAttempts: 4}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke performs one model call for a named feature. Rate-limit errors are
// retried with exponential backoff before giving up; every outcome is
// recorded as a usage event, and failures are logged through the store's
// diagnostic buffer.
func (c *Client) Invoke(ctx context.Context, feature, prompt string) (*Result, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second

	start := time.Now()
	var res *Result
	var err error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				attempt = c.maxAttempts
			case <-time.After(bo.NextBackOff()):
			}
			if err != nil {
				break
			}
		}
		res, err = c.caller.Call(ctx, prompt)
		if err == nil || !errors.Is(err, ErrRateLimited) {
			break
		}
		if c.logger != nil {
			c.logger.Debug("rate limited, backing off", "feature", feature, "attempt", attempt+1)
		}
	}

	ev := core.UsageEvent{
		Feature:   feature,
		Model:     c.model,
		LatencyMS: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if res != nil {
		ev.InputTokens = res.InputTokens
		ev.OutputTokens = res.OutputTokens
	}
	if _, terr := c.svc.TrackUsage(ctx, ev); terr != nil && c.logger != nil {
		c.logger.Warn("failed to record usage", "error", terr)
	}

	if err != nil {
		_, _ = c.svc.AddLog(ctx, core.SeverityError, "model call failed: "+feature,
			map[string]any{"model": c.model, "error": err.Error()})
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	return res, nil
}
