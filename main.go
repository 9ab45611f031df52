package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/okhomin/transcripts-mcp/embed"
	"github.com/okhomin/transcripts-mcp/readers"
	"github.com/okhomin/transcripts-mcp/store"
	"github.com/okhomin/transcripts-mcp/supadata"
)

// app wires the stores, the embedding client and the ingestion pipeline that
// every mode of the binary needs.
type app struct {
	log         *slog.Logger
	transcripts *store.TranscriptStore
	pipeline    *Pipeline
	retriever   *Retriever
}

func newEmbedder(cfg *Config, logger *slog.Logger) (*embed.Client, error) {
	provider := embed.ProviderConfig{}
	if cfg.OpenAI != nil {
		provider.OpenAIKey = cfg.OpenAI.ApiKey
		provider.OpenAIModel = cfg.OpenAI.Model
	}
	if cfg.Gemini != nil {
		provider.GeminiKey = cfg.Gemini.ApiKey
		provider.GeminiModel = cfg.Gemini.Model
	}

	ef, err := embed.NewEmbeddingFunction(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding function: %w", err)
	}

	return embed.NewClient(ef, embed.ClientConfig{
		Timeout:   time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		Attempts:  cfg.RetryAttempts,
		BaseDelay: time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
	}, logger), nil
}

func newApp(cfg *Config, logger *slog.Logger, reset bool) (*app, error) {
	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chunks, err := store.NewChunkStore(ctx, store.ChunkStoreConfig{
		BaseURL:    cfg.ChromaAddr,
		Collection: cfg.Collection,
		Reset:      reset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chunk store: %w", err)
	}

	transcripts, err := store.NewTranscriptStore(cfg.TranscriptsDB)
	if err != nil {
		return nil, err
	}

	return &app{
		log:         logger,
		transcripts: transcripts,
		pipeline: &Pipeline{
			log:          logger,
			embedder:     embedder,
			chunks:       chunks,
			chunkSize:    cfg.ChunkSize,
			chunkOverlap: *cfg.ChunkOverlap,
		},
		retriever: &Retriever{
			log:           logger,
			embedder:      embedder,
			chunks:        chunks,
			results:       cfg.Results,
			minSimilarity: *cfg.MinSimilarity,
		},
	}, nil
}

// runFetch downloads transcripts for the given video URLs and ingests them.
// Without URL arguments it prompts on stdin until an empty line.
func runFetch(ctx context.Context, cfg *Config, a *app, urls []string) error {
	if cfg.Supadata == nil || cfg.Supadata.ApiKey == "" {
		return fmt.Errorf("transcript fetching requires a supadata API key")
	}

	client, err := supadata.NewClient(supadata.Config{
		BaseURL: cfg.Supadata.BaseURL,
		ApiKey:  cfg.Supadata.ApiKey,
	})
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		urls = promptURLs()
	}

	for _, videoURL := range urls {
		text, err := client.Transcript(ctx, videoURL)
		if err != nil {
			a.log.Error("failed to fetch transcript", "url", videoURL, "err", err)
			fmt.Printf("failed to fetch %s: %s\n", videoURL, err)
			continue
		}

		crc := crc32.Checksum([]byte(text), crc32.IEEETable)
		existing, err := a.transcripts.GetBySource(ctx, videoURL)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err == nil && existing.Crc == crc {
			a.log.Info("transcript unchanged, skipping", "url", videoURL)
			fmt.Printf("unchanged %s\n", videoURL)
			continue
		}

		t, err := a.transcripts.Upsert(ctx, store.Transcript{
			Source: videoURL,
			Text:   text,
			Crc:    crc,
		})
		if err != nil {
			return err
		}

		n, err := a.pipeline.Reingest(ctx, t)
		if err != nil {
			a.log.Error("failed to ingest transcript", "url", videoURL, "chunks_written", n, "err", err)
			fmt.Printf("failed to ingest %s: %s\n", videoURL, err)
			continue
		}

		a.log.Info("transcript fetched", "url", videoURL, "chunks", n)
		fmt.Printf("ingested %s (%d chunks)\n", videoURL, n)
	}

	return nil
}

func promptURLs() []string {
	var urls []string
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Enter video URL (empty line to finish): ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		urls = append(urls, line)
	}

	return urls
}

// runReingest re-embeds every stored transcript. Useful after switching the
// embedding model or resetting the vector database.
func runReingest(ctx context.Context, a *app) error {
	transcripts, err := a.transcripts.List(ctx)
	if err != nil {
		return err
	}

	failed := a.pipeline.ReingestAll(ctx, transcripts)

	fmt.Printf("re-ingested %d of %d transcripts\n", len(transcripts)-failed, len(transcripts))
	if failed > 0 {
		return fmt.Errorf("%d transcripts failed to re-ingest", failed)
	}

	return nil
}

func runServe(ctx context.Context, cfg *Config, a *app, stdio bool) error {
	if cfg.TranscriptsDir != "" {
		reg := &Registry{
			log:              a.log,
			root:             cfg.TranscriptsDir,
			mergeEventsDelay: time.Duration(cfg.MergeEventsMs) * time.Millisecond,
			transcripts:      a.transcripts,
			pipeline:         a.pipeline,
			readers:          []fileReader{&readers.UniversalReader{}},
		}

		go func() {
			if err := reg.Sync(ctx); err != nil {
				a.log.Error("failed to sync transcripts directory", "err", err)
			}
			if err := reg.Watch(ctx); err != nil {
				a.log.Error("failed to watch transcripts directory", "err", err)
			}
		}()
	}

	srv := NewSearchServer(a.retriever, a.log)
	if stdio {
		return server.ServeStdio(srv)
	}

	// Stateless HTTP: each request carries everything it needs, so clients
	// can reconnect without a session handshake.
	httpSrv := server.NewStreamableHTTPServer(srv, server.WithStateLess(true))
	a.log.Info("serving MCP over HTTP", "addr", cfg.ServerAddr)
	return httpSrv.Start(cfg.ServerAddr)
}

func main() {
	stdio := flag.Bool("stdio", false, "Serve MCP over stdio instead of HTTP")
	reset := flag.Bool("reset", false, "Reinitialize the vector database from scratch if set")
	reingest := flag.Bool("reingest", false, "Re-embed every stored transcript, then exit")
	fetch := flag.Bool("fetch", false, "Fetch and ingest transcripts for the given video URLs, then exit")
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file for the MCP server")
	flag.Parse()

	// Missing .env is fine, keys may come from the config or the environment.
	_ = godotenv.Load()

	cfg, err := readConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %s", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, nil))

	a, err := newApp(cfg, logger, *reset)
	if err != nil {
		log.Fatal(err)
	}
	defer a.transcripts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case *fetch:
		err = runFetch(ctx, cfg, a, flag.Args())
	case *reingest:
		err = runReingest(ctx, a)
	default:
		err = runServe(ctx, cfg, a, *stdio)
	}
	if err != nil {
		log.Fatal(err)
	}
}
