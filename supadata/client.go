// Package supadata is a minimal client for the Supadata transcript API. It
// fetches the transcript of a video URL and joins it into one plain string.
package supadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.supadata.ai/v1"
	DefaultTimeout = 60 * time.Second
)

type Config struct {
	BaseURL string
	ApiKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type transcriptResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.ApiKey == "" {
		return nil, fmt.Errorf("supadata: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.ApiKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Transcript fetches the transcript for a video URL. The API returns the
// transcript as timed segments; they are joined with spaces into one text.
func (c *Client) Transcript(ctx context.Context, videoURL string) (string, error) {
	endpoint := fmt.Sprintf("%s/youtube/transcript?url=%s", c.baseURL, url.QueryEscape(videoURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("supadata: failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("supadata: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("supadata: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("supadata: API returned status %d: %s", resp.StatusCode, string(body))
	}

	var tr transcriptResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("supadata: failed to decode response: %w", err)
	}

	if len(tr.Content) == 0 {
		return "", fmt.Errorf("supadata: no transcript content for %s", videoURL)
	}

	var sb strings.Builder
	for _, segment := range tr.Content {
		sb.WriteString(segment.Text)
		sb.WriteString(" ")
	}

	return strings.TrimSpace(sb.String()), nil
}
