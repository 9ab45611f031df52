package main

import (
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/okhomin/transcripts-mcp/store"
)

type transcriptStore interface {
	Upsert(ctx context.Context, t store.Transcript) (store.Transcript, error)
	List(ctx context.Context) ([]store.Transcript, error)
	DeleteBySource(ctx context.Context, source string) error
}

type ingestor interface {
	Reingest(ctx context.Context, t store.Transcript) (int, error)
	Forget(ctx context.Context, transcriptID int64) error
}

type fileReader interface {
	CanRead(path string) bool
	ReadText(path string) (string, error)
}

// Registry keeps the transcript store in sync with a local directory of
// transcript files. A file's path is its transcript source; the crc of its
// text decides whether it needs re-ingesting. Transcripts fetched from URLs
// are outside the registry's reach and never touched by a sync.
type Registry struct {
	log              *slog.Logger
	root             string
	mergeEventsDelay time.Duration
	transcripts      transcriptStore
	pipeline         ingestor
	readers          []fileReader
}

type diskDoc struct {
	path string
	text string
	crc  uint32
}

// Sync ingests new and changed files and forgets transcripts whose file is
// gone. Per-file failures are logged and the sync moves on.
func (r *Registry) Sync(ctx context.Context) error {
	disk, err := r.collectFiles()
	if err != nil {
		return err
	}

	diskMap := make(map[string]diskDoc, len(disk))
	for _, d := range disk {
		diskMap[d.path] = d
	}

	stored, err := r.transcripts.List(ctx)
	if err != nil {
		return err
	}

	dbMap := make(map[string]store.Transcript)
	for _, t := range stored {
		if r.manages(t.Source) {
			dbMap[t.Source] = t
		}
	}

	r.ingestChanged(ctx, diskMap, dbMap)
	r.forgetRemoved(ctx, diskMap, dbMap)
	return nil
}

func (r *Registry) ingestChanged(ctx context.Context, disk map[string]diskDoc, db map[string]store.Transcript) {
	for _, d := range disk {
		stored, ok := db[d.path]
		if ok && stored.Crc == d.crc {
			continue
		}

		t, err := r.transcripts.Upsert(ctx, store.Transcript{
			Source: d.path,
			Text:   d.text,
			Crc:    d.crc,
		})
		if err != nil {
			r.log.Error("failed to store transcript file", "file", d.path, "err", err)
			continue
		}

		n, err := r.pipeline.Reingest(ctx, t)
		if err != nil {
			r.log.Error("failed to ingest transcript file",
				"file", d.path, "chunks_written", n, "err", err)
			continue
		}

		r.log.Info("transcript file ingested", "file", d.path, "chunks", n)
	}
}

func (r *Registry) forgetRemoved(ctx context.Context, disk map[string]diskDoc, db map[string]store.Transcript) {
	for source, t := range db {
		if _, ok := disk[source]; ok {
			continue
		}

		if err := r.pipeline.Forget(ctx, t.ID); err != nil {
			r.log.Error("failed to forget transcript chunks", "file", source, "err", err)
			continue
		}
		if err := r.transcripts.DeleteBySource(ctx, source); err != nil {
			r.log.Error("failed to delete transcript", "file", source, "err", err)
			continue
		}

		r.log.Info("transcript file forgotten", "file", source)
	}
}

func (r *Registry) collectFiles() (docs []diskDoc, err error) {
	err = filepath.Walk(r.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		reader, e := r.findReader(path)
		if e != nil {
			r.log.Warn("unsupported transcript file", "file", path)
			return nil
		}

		text, e := reader.ReadText(path)
		if e != nil {
			return e
		}

		docs = append(docs, diskDoc{
			path: path,
			text: text,
			crc:  crc32.Checksum([]byte(text), crc32.IEEETable),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *Registry) manages(source string) bool {
	return strings.HasPrefix(source, filepath.Clean(r.root)+string(filepath.Separator))
}

func (r *Registry) findReader(path string) (fileReader, error) {
	for _, reader := range r.readers {
		if reader.CanRead(path) {
			return reader, nil
		}
	}

	return nil, fmt.Errorf("unable to find reader for file: %s", path)
}

// Watch re-syncs after changes in the transcripts directory. Bursts of
// events (editors write in several steps) are merged: the sync runs once the
// directory has been quiet for mergeEventsDelay.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(r.root); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", r.root, err)
	}

	go r.watchLoop(ctx, watcher)
	return nil
}

func (r *Registry) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	debounce := time.NewTimer(r.mergeEventsDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(r.mergeEventsDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("transcripts directory watch error", "err", err)

		case <-debounce.C:
			if err := r.Sync(ctx); err != nil {
				r.log.Error("failed to sync transcripts directory", "err", err)
			}
		}
	}
}
