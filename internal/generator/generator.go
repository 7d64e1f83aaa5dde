// Package generator wraps the external language-generation service.
//
// A Client never returns an error: without a credential it echoes a
// truncated copy of the last user turn, and with one it walks an ordered
// list of candidate models until one answers.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kart-io/logger/core"

	"docqa/internal/domain"
)

const (
	// DefaultFallbackChars is the character budget of the no-credential fallback.
	DefaultFallbackChars = 800
	// NoCredentialText is returned in fallback mode when there is no user turn to echo.
	NoCredentialText = "[No generation API key configured]"
	// ErrorMarker prefixes the text returned once every candidate model failed.
	ErrorMarker = "[LLM error: "
)

var (
	// ErrUnavailable means the backend could not be reached or rejected the call.
	ErrUnavailable = errors.New("generation service unavailable")
	// ErrTimeout means the per-call deadline expired.
	ErrTimeout = errors.New("generation service timeout")
	// ErrInvalidResponse means the backend answered without usable text.
	ErrInvalidResponse = errors.New("generation service invalid response")
)

// CallError records why one model attempt failed.
type CallError struct {
	Model string
	Kind  error
	Err   error
}

func (e *CallError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Model, e.Kind)
	case errors.Is(e.Err, e.Kind):
		return fmt.Sprintf("%s: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Model, e.Kind, e.Err)
}

func (e *CallError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Backend performs one chat completion against one model.
type Backend interface {
	Name() string
	Complete(ctx context.Context, model string, turns []domain.Turn) (string, error)
}

// Options configures a Client.
type Options struct {
	// Models are tried in order; an empty list forces fallback mode.
	Models []string
	// Timeout bounds each model attempt. Zero leaves the caller's context in charge.
	Timeout time.Duration
	// Backoff is the pause after a failed attempt.
	Backoff time.Duration
	// FallbackChars is the character budget of the no-credential fallback.
	FallbackChars int
}

// Client implements domain.Generator over an optional Backend.
type Client struct {
	backend Backend
	opts    Options
	log     core.Logger
	sleep   func(context.Context, time.Duration)
}

// NewClient returns a client that uses backend. A nil backend means no
// credential is configured.
func NewClient(backend Backend, opts Options, log core.Logger) *Client {
	if opts.FallbackChars <= 0 {
		opts.FallbackChars = DefaultFallbackChars
	}
	return &Client{backend: backend, opts: opts, log: log, sleep: sleepCtx}
}

// Degraded reports whether the client runs in fallback mode.
func (c *Client) Degraded() bool { return c.backend == nil || len(c.opts.Models) == 0 }

// Generate produces the response text for turns.
func (c *Client) Generate(ctx context.Context, turns []domain.Turn) string {
	if c.Degraded() {
		return Fallback(turns, c.opts.FallbackChars)
	}
	text, err := c.Attempt(ctx, turns)
	if err != nil {
		return ErrorMarker + err.Error() + "]"
	}
	return text
}

// Attempt tries each model in priority order and returns the first
// non-empty response, or the last failure once the list is exhausted.
func (c *Client) Attempt(ctx context.Context, turns []domain.Turn) (string, error) {
	if c.backend == nil {
		return "", errors.New("no generation backend configured")
	}
	var lastErr error
	for i, model := range c.opts.Models {
		text, err := c.call(ctx, model, turns)
		if err == nil {
			c.log.Debugw("generation succeeded", "backend", c.backend.Name(), "model", model, "attempt", i+1)
			return text, nil
		}
		lastErr = err
		c.log.Warnw("generation attempt failed", "backend", c.backend.Name(), "model", model, "attempt", i+1, "error", err.Error())
		if i < len(c.opts.Models)-1 {
			c.sleep(ctx, c.opts.Backoff)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no models configured")
	}
	return "", lastErr
}

func (c *Client) call(ctx context.Context, model string, turns []domain.Turn) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &CallError{Model: model, Kind: ErrUnavailable, Err: fmt.Errorf("backend panic: %v", r)}
		}
	}()
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	text, err = c.backend.Complete(ctx, model, turns)
	if err != nil {
		return "", &CallError{Model: model, Kind: classify(ctx, err), Err: err}
	}
	if text == "" {
		return "", &CallError{Model: model, Kind: ErrInvalidResponse}
	}
	return text, nil
}

func classify(ctx context.Context, err error) error {
	for _, kind := range []error{ErrTimeout, ErrInvalidResponse, ErrUnavailable} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrUnavailable
}

// Fallback returns the content of the last user turn truncated to limit
// characters, with "..." appended when something was cut.
func Fallback(turns []domain.Turn, limit int) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != domain.RoleUser {
			continue
		}
		return Truncate(turns[i].Content, limit)
	}
	return NoCredentialText
}

// Truncate keeps the first limit characters of s.
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
