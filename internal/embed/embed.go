// Package embed is the thin client for the external embedding service.
// The service is treated as a stateless, opaque function from text to a
// vector; transient failures are retried by the shared HTTP client.
package embed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/screamdb/etl-core/internal/source/httpx"
)

// Client calls the embedding endpoint.
type Client struct {
	http   *httpx.Client
	logger *slog.Logger
}

// Config configures the embedding boundary.
type Config struct {
	BaseURL string
	APIKey  string
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Vector []float32 `json:"vector"`
	Error  string    `json:"error,omitempty"`
}

// NewClient creates an embedding client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	hc := httpx.DefaultClientConfig()
	hc.BaseURL = cfg.BaseURL
	if cfg.APIKey != "" {
		hc.Auth = httpx.BearerToken{Token: cfg.APIKey}
	}
	return &Client{
		http:   httpx.NewClient(hc),
		logger: logger.With("component", "embed"),
	}
}

// Embed returns the vector for one text. Empty input is rejected
// before any network call.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embed: empty text")
	}

	resp, err := c.http.PostJSON(ctx, "/embed", embedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	var out embedResponse
	if err := resp.JSON(&out); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("embedding service: %s", out.Error)
	}
	if len(out.Vector) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}
	return out.Vector, nil
}
