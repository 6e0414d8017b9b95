// Package prygl fetches the authoritative ice conditions page and reduces it
// to bounded plain text suitable for a summarization prompt.
package prygl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/couchcryptid/prygl-status-service/internal/observability"
)

// maxPageTextLen bounds the plain-text prefix handed to the model. Enough
// context for a seasonal conditions page without unbounded prompt cost.
const maxPageTextLen = 8000

// maxResponseBytes caps how much of the page body is read at all.
const maxResponseBytes = 2 << 20

var (
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Fetcher retrieves the source page over HTTP.
type Fetcher struct {
	pageURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for the given page URL.
func NewFetcher(pageURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		pageURL: pageURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchPageText downloads the source page and returns its markup-stripped,
// whitespace-collapsed text, truncated to maxPageTextLen characters.
// A network error or non-success status is returned to the caller, which
// advances to the search-assisted fallback.
func (f *Fetcher) FetchPageText(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.metrics.SourceFetches.WithLabelValues("error").Inc()
		return "", fmt.Errorf("fetch source page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.metrics.SourceFetches.WithLabelValues("error").Inc()
		return "", fmt.Errorf("fetch source page: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		f.metrics.SourceFetches.WithLabelValues("error").Inc()
		return "", fmt.Errorf("read source page: %w", err)
	}

	f.metrics.SourceFetches.WithLabelValues("success").Inc()

	text := f.extractText(string(body))
	if runes := []rune(text); len(runes) > maxPageTextLen {
		text = string(runes[:maxPageTextLen])
	}
	return text, nil
}

// extractText prefers readability's article extraction and falls back to a
// plain tag strip for pages readability cannot make sense of.
func (f *Fetcher) extractText(html string) string {
	if u, err := url.Parse(f.pageURL); err == nil {
		article, err := readability.FromReader(strings.NewReader(html), u)
		if err == nil && strings.TrimSpace(article.TextContent) != "" {
			return collapseWhitespace(article.TextContent)
		}
		if err != nil {
			f.logger.Debug("readability extraction failed, stripping tags", "error", err)
		}
	}
	return collapseWhitespace(tagRe.ReplaceAllString(html, " "))
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
