package main

import (
	"context"
	"errors"
	"testing"

	"github.com/okhomin/transcripts-mcp/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	calls     int
	threshold float64
	limit     int
	matches   []store.Match
	err       error
}

func (f *fakeSearcher) Search(ctx context.Context, vector []float32, threshold float64, limit int) ([]store.Match, error) {
	f.calls++
	f.threshold = threshold
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func newTestRetriever(e embedder, s chunkSearcher) *Retriever {
	return &Retriever{
		log:           discardLogger(),
		embedder:      e,
		chunks:        s,
		results:       6,
		minSimilarity: 0.3,
	}
}

func Test_Retriever_Search(t *testing.T) {
	searcher := &fakeSearcher{
		matches: []store.Match{
			{TranscriptID: 1, Text: "a day on venus is longer than its year", Similarity: 0.92},
			{TranscriptID: 2, Text: "venus has no moons", Similarity: 0.61},
		},
	}
	r := newTestRetriever(&fakeEmbedder{}, searcher)

	matches, err := r.Search(context.Background(), "how long is a day on venus")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(1), matches[0].TranscriptID)

	// the configured threshold and limit are handed to the store
	assert.Equal(t, 0.3, searcher.threshold)
	assert.Equal(t, 6, searcher.limit)
}

func Test_Retriever_Search_EmptyQuery(t *testing.T) {
	emb := &fakeEmbedder{}
	searcher := &fakeSearcher{}
	r := newTestRetriever(emb, searcher)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := r.Search(context.Background(), query)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}

	// rejected before any embedding or store call
	assert.Zero(t, emb.calls)
	assert.Zero(t, searcher.calls)
}

func Test_Retriever_Search_NoMatches(t *testing.T) {
	r := newTestRetriever(&fakeEmbedder{}, &fakeSearcher{matches: []store.Match{}})

	matches, err := r.Search(context.Background(), "nothing like this was ingested")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func Test_Retriever_Search_EmbeddingFailure(t *testing.T) {
	r := newTestRetriever(&fakeEmbedder{failAt: 1}, &fakeSearcher{})

	_, err := r.Search(context.Background(), "some query")
	assert.ErrorIs(t, err, ErrSearch)
}

func Test_Retriever_Search_StoreFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("similarity query failed")}
	r := newTestRetriever(&fakeEmbedder{}, searcher)

	matches, err := r.Search(context.Background(), "some query")
	assert.ErrorIs(t, err, ErrSearch)
	assert.Nil(t, matches)
}
