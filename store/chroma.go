package store

import (
	"context"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

const (
	TranscriptIDKey = "transcript_id"
	SeqKey          = "seq"
)

// queryResult is the part of a chroma query response the store consumes.
type queryResult interface {
	GetDocumentsGroups() []chroma.Documents
	GetMetadatasGroups() []chroma.DocumentMetadatas
	GetDistancesGroups() []embeddings.Distances
}

// chunkCollection is the slice of chroma.Collection the store needs. Narrowed
// so tests can fake it without a generated mock of the full interface.
type chunkCollection interface {
	Add(ctx context.Context, opts ...chroma.CollectionAddOption) error
	Delete(ctx context.Context, opts ...chroma.CollectionDeleteOption) error
	Query(ctx context.Context, opts ...chroma.CollectionQueryOption) (queryResult, error)
}

type collectionAdapter struct {
	col chroma.Collection
}

func (a collectionAdapter) Add(ctx context.Context, opts ...chroma.CollectionAddOption) error {
	return a.col.Add(ctx, opts...)
}

func (a collectionAdapter) Delete(ctx context.Context, opts ...chroma.CollectionDeleteOption) error {
	return a.col.Delete(ctx, opts...)
}

func (a collectionAdapter) Query(ctx context.Context, opts ...chroma.CollectionQueryOption) (queryResult, error) {
	return a.col.Query(ctx, opts...)
}

// ChunkStore keeps embedded transcript windows in a Chroma collection and
// answers cosine-similarity queries over them.
type ChunkStore struct {
	col chunkCollection
}

type ChunkStoreConfig struct {
	BaseURL    string
	Collection string
	Reset      bool
}

func NewChunkStore(ctx context.Context, cfg ChunkStoreConfig) (*ChunkStore, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	if cfg.Reset {
		// Ignore the error: the collection may simply not exist yet.
		_ = client.DeleteCollection(ctx, cfg.Collection)
	}

	col, err := client.GetOrCreateCollection(ctx, cfg.Collection,
		chroma.WithHNSWSpaceCreate(embeddings.COSINE))
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", cfg.Collection, err)
	}

	return &ChunkStore{col: collectionAdapter{col: col}}, nil
}

func chunkID(transcriptID int64, seq int) chroma.DocumentID {
	return chroma.DocumentID(fmt.Sprintf("%d:%d", transcriptID, seq))
}

// Insert writes one chunk with its embedding vector. The chunk ID is derived
// from the transcript reference and sequence index, so re-inserting the same
// window overwrites rather than duplicates.
func (s *ChunkStore) Insert(ctx context.Context, c Chunk) error {
	err := s.col.Add(ctx,
		chroma.WithIDs(chunkID(c.TranscriptID, c.Seq)),
		chroma.WithTexts(c.Text),
		chroma.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(c.Vector)),
		chroma.WithMetadatas(chroma.NewDocumentMetadata(
			chroma.NewIntAttribute(TranscriptIDKey, c.TranscriptID),
			chroma.NewIntAttribute(SeqKey, int64(c.Seq)),
		)),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert chunk %d of transcript %d: %w", ErrWrite, c.Seq, c.TranscriptID, err)
	}

	return nil
}

// Search returns the chunks closest to vector, ordered by similarity
// descending, at most limit of them, all scoring at least threshold.
func (s *ChunkStore) Search(ctx context.Context, vector []float32, threshold float64, limit int) ([]Match, error) {
	r, err := s.col.Query(ctx,
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chroma.WithNResults(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity query failed: %w", ErrRead, err)
	}

	if len(r.GetDocumentsGroups()) == 0 {
		return []Match{}, nil
	}

	docs := r.GetDocumentsGroups()[0]
	metadatas := r.GetMetadatasGroups()[0]
	distances := r.GetDistancesGroups()[0]

	matches := make([]Match, 0, len(docs))
	for i := range docs {
		// Chroma reports cosine distance; the contract upstream is a
		// similarity score in [0, 1].
		similarity := 1 - float64(distances[i])
		if similarity < threshold {
			continue
		}

		transcriptID, _ := metadatas[i].GetInt(TranscriptIDKey)
		matches = append(matches, Match{
			TranscriptID: transcriptID,
			Text:         docs[i].ContentString(),
			Similarity:   similarity,
		})
	}

	return matches, nil
}

// Forget removes every chunk belonging to the given transcript.
func (s *ChunkStore) Forget(ctx context.Context, transcriptID int64) error {
	err := s.col.Delete(ctx, chroma.WithWhereDelete(chroma.EqInt(TranscriptIDKey, int(transcriptID))))
	if err != nil {
		return fmt.Errorf("%w: failed to forget chunks of transcript %d: %w", ErrWrite, transcriptID, err)
	}

	return nil
}
