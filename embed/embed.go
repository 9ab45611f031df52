// Package embed wraps the embedding provider behind a single Embedder
// interface with per-call timeouts and retry with exponential backoff.
package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// ErrEmbed is wrapped by every failed embedding call. A timed out call keeps
// context.DeadlineExceeded in its wrap chain.
var ErrEmbed = errors.New("embedding failed")

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// queryEmbedder is the slice of the provider's embedding function the client
// uses.
type queryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) (embeddings.Embedding, error)
}

type ClientConfig struct {
	Timeout   time.Duration
	Attempts  int
	BaseDelay time.Duration
}

// Client decorates an embedding function with a per-call timeout and retry.
// The same client must be used at ingestion and query time: vectors from
// different models do not live in the same space.
type Client struct {
	ef        queryEmbedder
	timeout   time.Duration
	attempts  int
	baseDelay time.Duration
	log       *slog.Logger
}

func NewClient(ef queryEmbedder, cfg ClientConfig, log *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		ef:        ef,
		timeout:   cfg.Timeout,
		attempts:  cfg.Attempts,
		baseDelay: cfg.BaseDelay,
		log:       log,
	}
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		e, err := c.ef.EmbedQuery(callCtx, text)
		if err != nil {
			return err
		}

		vec = e.ContentAsFloat32()
		if len(vec) == 0 {
			return errors.New("provider returned an empty embedding")
		}

		return nil
	}

	if err := c.retry(ctx, op); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbed, err)
	}

	return vec, nil
}

// retry runs op up to c.attempts times, doubling the delay after each
// failure. A cancelled parent context stops the loop immediately; a timeout
// of a single call does not.
func (c *Client) retry(ctx context.Context, op func() error) error {
	var lastErr error
	delay := c.baseDelay

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if attempt == c.attempts {
			break
		}

		c.log.Debug("embedding call failed, retrying",
			"attempt", attempt, "max_attempts", c.attempts, "err", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return lastErr
}
