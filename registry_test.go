package main

import (
	"context"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okhomin/transcripts-mcp/readers"
	"github.com/okhomin/transcripts-mcp/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscriptStore struct {
	mu      sync.Mutex
	nextID  int64
	stored  []store.Transcript
	upserts []string
	deletes []string
}

func (f *fakeTranscriptStore) Upsert(ctx context.Context, t store.Transcript) (store.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserts = append(f.upserts, t.Source)
	for _, existing := range f.stored {
		if existing.Source == t.Source {
			t.ID = existing.ID
			return t, nil
		}
	}
	f.nextID++
	t.ID = f.nextID
	return t, nil
}

func (f *fakeTranscriptStore) List(ctx context.Context) ([]store.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored, nil
}

func (f *fakeTranscriptStore) DeleteBySource(ctx context.Context, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, source)
	return nil
}

type fakeIngestor struct {
	mu         sync.Mutex
	reingested []int64
	forgotten  []int64
}

func (f *fakeIngestor) Reingest(ctx context.Context, t store.Transcript) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reingested = append(f.reingested, t.ID)
	return 1, nil
}

func (f *fakeIngestor) Forget(ctx context.Context, transcriptID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotten = append(f.forgotten, transcriptID)
	return nil
}

func (f *fakeIngestor) reingestedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reingested)
}

func crcOf(s string) uint32 {
	return crc32.Checksum([]byte(s), crc32.IEEETable)
}

func newTestRegistry(root string, ts transcriptStore, ing ingestor) *Registry {
	return &Registry{
		log:              discardLogger(),
		root:             root,
		mergeEventsDelay: 50 * time.Millisecond,
		transcripts:      ts,
		pipeline:         ing,
		readers:          []fileReader{&readers.TxtReader{}},
	}
}

func Test_Registry_Sync(t *testing.T) {
	tmp := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(tmp, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	newFile := write("new.txt", "brand new transcript")
	unchanged := write("unchanged.txt", "already ingested")
	changed := write("changed.txt", "edited transcript")

	ts := &fakeTranscriptStore{
		nextID: 100,
		stored: []store.Transcript{
			{ID: 1, Source: unchanged, Crc: crcOf("already ingested")},
			{ID: 2, Source: changed, Crc: crcOf("old content")},
			{ID: 3, Source: filepath.Join(tmp, "removed.txt"), Crc: 9},
			// URL-sourced transcripts are not managed by the registry
			{ID: 4, Source: "https://youtu.be/abc", Crc: 5},
		},
	}
	ing := &fakeIngestor{}

	reg := newTestRegistry(tmp, ts, ing)
	require.NoError(t, reg.Sync(context.Background()))

	assert.ElementsMatch(t, []string{newFile, changed}, ts.upserts)
	assert.ElementsMatch(t, []int64{101, 2}, ing.reingested)
	assert.Equal(t, []int64{3}, ing.forgotten)
	assert.Equal(t, []string{filepath.Join(tmp, "removed.txt")}, ts.deletes)
}

func Test_Registry_Sync_SkipsUnsupportedFiles(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "video.mp4"), []byte("binary"), 0o644))

	ts := &fakeTranscriptStore{}
	ing := &fakeIngestor{}

	reg := newTestRegistry(tmp, ts, ing)
	require.NoError(t, reg.Sync(context.Background()))

	assert.Empty(t, ts.upserts)
	assert.Empty(t, ing.reingested)
}

func Test_Registry_Watch(t *testing.T) {
	tmp := t.TempDir()

	ts := &fakeTranscriptStore{}
	ing := &fakeIngestor{}
	reg := newTestRegistry(tmp, ts, ing)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, reg.Watch(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(tmp, "talk.txt"), []byte("a transcript"), 0o644))

	assert.Eventually(t, func() bool {
		return ing.reingestedCount() == 1
	}, 3*time.Second, 20*time.Millisecond)
}
