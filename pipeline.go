package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okhomin/transcripts-mcp/store"
)

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type chunkWriter interface {
	Insert(ctx context.Context, c store.Chunk) error
	Forget(ctx context.Context, transcriptID int64) error
}

// Pipeline turns one transcript into embedded, stored chunks. Chunks are
// processed strictly in sequence order, one embedding call in flight at a
// time.
type Pipeline struct {
	log          *slog.Logger
	embedder     embedder
	chunks       chunkWriter
	chunkSize    int
	chunkOverlap int
}

// Ingest windows, embeds and stores one transcript, returning the number of
// chunks written. A failure at chunk i aborts the rest of the transcript but
// does not roll back chunks 0..i-1: partial ingestion is observable through
// the returned count and recoverable by re-ingesting.
func (p *Pipeline) Ingest(ctx context.Context, t store.Transcript) (int, error) {
	texts, err := Chunkify(t.Text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return 0, err
	}

	dim := 0
	for i, text := range texts {
		vec, err := p.embedder.Embed(ctx, text)
		if err != nil {
			return i, fmt.Errorf("failed to embed chunk %d of transcript %d: %w", i, t.ID, err)
		}
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) != dim {
			return i, fmt.Errorf("embedding dimensionality changed mid-transcript %d: chunk %d has %d, want %d",
				t.ID, i, len(vec), dim)
		}

		err = p.chunks.Insert(ctx, store.Chunk{
			TranscriptID: t.ID,
			Seq:          i,
			Text:         text,
			Vector:       vec,
		})
		if err != nil {
			return i, fmt.Errorf("failed to store chunk %d of transcript %d: %w", i, t.ID, err)
		}
	}

	return len(texts), nil
}

// Reingest drops a transcript's existing chunks and ingests it again. This is
// the idempotent path: fetching the same source twice replaces its chunks
// instead of appending duplicates.
func (p *Pipeline) Reingest(ctx context.Context, t store.Transcript) (int, error) {
	if err := p.chunks.Forget(ctx, t.ID); err != nil {
		return 0, err
	}

	return p.Ingest(ctx, t)
}

// Forget removes a transcript's chunks without re-ingesting.
func (p *Pipeline) Forget(ctx context.Context, transcriptID int64) error {
	return p.chunks.Forget(ctx, transcriptID)
}

// ReingestAll runs Reingest over every given transcript. A failed transcript
// is logged with how far it got and the batch moves on to the next one.
// Returns the number of transcripts that failed.
func (p *Pipeline) ReingestAll(ctx context.Context, transcripts []store.Transcript) int {
	failed := 0
	for _, t := range transcripts {
		n, err := p.Reingest(ctx, t)
		if err != nil {
			failed++
			p.log.Error("transcript ingestion failed",
				"transcript", t.ID, "source", t.Source, "chunks_written", n, "err", err)
			continue
		}

		p.log.Info("transcript ingested", "transcript", t.ID, "source", t.Source, "chunks", n)
	}

	return failed
}
