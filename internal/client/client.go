// Package client is the consuming side of the status endpoint: an HTTP client
// with an independent calendar-day cache in front of the network call.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/prygl-status-service/internal/domain"
)

// Client fetches reports from the status endpoint. When a daily cache is
// attached, an unforced fetch short-circuits before any network call if
// today's record exists; a forced fetch always goes through the endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	daily      *CalendarDayCache
	logger     *slog.Logger
}

// New creates a Client for the given /api/status endpoint URL. daily may be
// nil to disable local caching.
func New(endpoint string, daily *CalendarDayCache, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			// Cold fetches block on the full generation pipeline.
			Timeout: 5 * time.Minute,
		},
		daily:  daily,
		logger: logger,
	}
}

// Fetch returns the current report. force requests a server-side cache bypass
// and skips the local daily cache on the way in; successful responses are
// written back to the daily cache either way.
func (c *Client) Fetch(ctx context.Context, force bool) (domain.IceStatusReport, error) {
	if !force && c.daily != nil {
		if report, ok := c.daily.Get(); ok {
			return report, nil
		}
	}

	u := c.endpoint
	if force {
		u += "?force=1"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.IceStatusReport{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.IceStatusReport{}, fmt.Errorf("fetch status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.IceStatusReport{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return domain.IceStatusReport{}, fmt.Errorf("status endpoint: %s", apiErr.Error)
		}
		return domain.IceStatusReport{}, fmt.Errorf("status endpoint: status %d", resp.StatusCode)
	}

	var report domain.IceStatusReport
	if err := json.Unmarshal(body, &report); err != nil {
		return domain.IceStatusReport{}, fmt.Errorf("decode report: %w", err)
	}

	if c.daily != nil {
		if err := c.daily.Put(report); err != nil {
			c.logger.Warn("daily cache write failed", "error", err)
		}
	}
	return report, nil
}
