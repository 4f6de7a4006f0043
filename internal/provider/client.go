// Package provider fetches raw source records from the external read-only
// data feed that backs the incident cache. The feed exposes two listings:
// reports (the records incidents are derived from) and reporters (the
// actors reports are attributed to).
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const maxResponseBytes = 4 << 20

// Report is one raw source record.
type Report struct {
	ID       int    `json:"id"`
	AuthorID int    `json:"userId"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// Reporter is one actor record from the auxiliary listing.
type Reporter struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://jsonplaceholder.typicode.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Reports returns at most limit source records.
func (c *Client) Reports(ctx context.Context, limit int) ([]Report, error) {
	if limit < 1 {
		limit = 20
	}
	var reports []Report
	endpoint := fmt.Sprintf("%s/posts?_limit=%d", strings.TrimRight(c.cfg.BaseURL, "/"), limit)
	if err := c.getJSON(ctx, endpoint, &reports); err != nil {
		return nil, fmt.Errorf("fetch reports: %w", err)
	}
	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Reporters returns the auxiliary actor listing.
func (c *Client) Reporters(ctx context.Context) ([]Reporter, error) {
	var reporters []Reporter
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/users"
	if err := c.getJSON(ctx, endpoint, &reporters); err != nil {
		return nil, fmt.Errorf("fetch reporters: %w", err)
	}
	return reporters, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Warn("provider request failed", "endpoint", endpoint, "status", res.StatusCode)
		return fmt.Errorf("provider returned status %d", res.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
