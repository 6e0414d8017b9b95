// Package blob implements the cache.Store contract against the hosted blob
// store's REST surface: listing by prefix, uploading to a logical pathname,
// and downloading payloads by their returned URL.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/prygl-status-service/internal/cache"
)

// APIError is a non-success response from the blob store.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("blob store error: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the blob store API. It implements cache.Store.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a blob store client authenticated by a read-write token.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

type listResponse struct {
	Blobs []cache.Object `json:"blobs"`
}

type putResponse struct {
	URL string `json:"url"`
}

// List returns the objects whose pathnames start with prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]cache.Object, error) {
	u := c.baseURL + "?prefix=" + url.QueryEscape(prefix)
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return resp.Blobs, nil
}

// Download fetches a payload by the URL returned from List or Put.
func (c *Client) Download(ctx context.Context, blobURL string) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, blobURL, nil)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	return body, nil
}

// Put uploads a payload to the given logical pathname, overwriting any
// previous content. The store offers no conditional writes; last write wins.
func (c *Client) Put(ctx context.Context, pathname string, payload []byte) (cache.Object, error) {
	u := c.baseURL + "/" + pathname
	body, err := c.do(ctx, http.MethodPut, u, payload)
	if err != nil {
		return cache.Object{}, fmt.Errorf("put %q: %w", pathname, err)
	}

	var resp putResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return cache.Object{}, fmt.Errorf("decode put response: %w", err)
	}
	return cache.Object{Pathname: pathname, URL: resp.URL}, nil
}

func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
