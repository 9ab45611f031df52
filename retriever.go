package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/okhomin/transcripts-mcp/store"
)

type chunkSearcher interface {
	Search(ctx context.Context, vector []float32, threshold float64, limit int) ([]store.Match, error)
}

// Retriever answers a query by embedding it with the same model used at
// ingestion time and delegating to the chunk store's similarity search.
type Retriever struct {
	log           *slog.Logger
	embedder      embedder
	chunks        chunkSearcher
	results       int
	minSimilarity float64
}

// Search returns up to the configured number of matches scoring at least the
// configured similarity threshold, best first. Zero matches is a valid,
// empty, result.
func (r *Retriever) Search(ctx context.Context, query string) ([]store.Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidConfig)
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}

	matches, err := r.chunks.Search(ctx, vec, r.minSimilarity, r.results)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}

	r.log.Debug("transcript search", "query_len", len(query), "matches", len(matches))
	return matches, nil
}
