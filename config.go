package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	Model  string `yaml:"model"`
	ApiKey string `yaml:"api_key"`
}

type SupadataConfig struct {
	BaseURL string `yaml:"base_url"`
	ApiKey  string `yaml:"api_key"`
}

type Config struct {
	LogFile          string          `yaml:"log"`
	TranscriptsDB    string          `yaml:"transcripts_db"`
	TranscriptsDir   string          `yaml:"transcripts_dir"`
	MergeEventsMs    int             `yaml:"write_debounce_ms"`
	ChromaAddr       string          `yaml:"chroma_addr"`
	Collection       string          `yaml:"collection"`
	ChunkSize        int             `yaml:"chunk_size"`
	ChunkOverlap     *int            `yaml:"chunk_overlap"`
	Results          int             `yaml:"results"`
	MinSimilarity    *float64        `yaml:"min_similarity"`
	RequestTimeoutMs int             `yaml:"request_timeout_ms"`
	RetryAttempts    int             `yaml:"retry_attempts"`
	RetryBaseDelayMs int             `yaml:"retry_base_delay_ms"`
	ServerAddr       string          `yaml:"server_addr"`
	OpenAI           *ProviderConfig `yaml:"open_ai"`
	Gemini           *ProviderConfig `yaml:"gemini"`
	Supadata         *SupadataConfig `yaml:"supadata"`
}

func readConfig(cfgPath string) (*Config, error) {
	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(cfgFile)
	err = dec.Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.LogFile == "" {
		cfg.LogFile = "transcripts-mcp.log"
	}
	if cfg.TranscriptsDB == "" {
		cfg.TranscriptsDB = "transcripts.db"
	}
	if cfg.MergeEventsMs == 0 {
		cfg.MergeEventsMs = 500
	}
	if cfg.Collection == "" {
		cfg.Collection = "transcript_chunks"
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 800
	}
	// Zero is a valid setting for both, so only a missing key gets the
	// default.
	if cfg.ChunkOverlap == nil {
		overlap := 150
		cfg.ChunkOverlap = &overlap
	}
	if cfg.Results == 0 {
		cfg.Results = 6
	}
	if cfg.MinSimilarity == nil {
		similarity := 0.3
		cfg.MinSimilarity = &similarity
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = 30_000
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBaseDelayMs == 0 {
		cfg.RetryBaseDelayMs = 500
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = "localhost:3000"
	}

	// API keys may come from the environment (or a .env file) instead of the
	// config file.
	if cfg.OpenAI != nil && cfg.OpenAI.ApiKey == "" {
		cfg.OpenAI.ApiKey = os.Getenv("OPENAI_KEY")
	}
	if cfg.Gemini != nil && cfg.Gemini.ApiKey == "" {
		cfg.Gemini.ApiKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Supadata != nil && cfg.Supadata.ApiKey == "" {
		cfg.Supadata.ApiKey = os.Getenv("SUPADATA_API_KEY")
	}
}
