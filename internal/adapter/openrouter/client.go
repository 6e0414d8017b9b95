// Package openrouter implements the chat-completion client for the report
// generation backend. The backend can autonomously retrieve web content when
// the "web" plugin is enabled on a request.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/prygl-status-service/internal/observability"
)

const defaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// Message is a single chat-style prompt message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// URLCitation describes a page the backend retrieved while answering.
type URLCitation struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Annotation is a retrieved-citation record attached to a plugin-assisted reply.
type Annotation struct {
	Type        string      `json:"type"`
	URLCitation URLCitation `json:"url_citation"`
}

// ChatResult carries the first choice's answer text and its citation metadata.
type ChatResult struct {
	Content     string
	Annotations []Annotation
}

// APIError is a non-success transport response from the backend. Callers treat
// it as retryable by falling back to the next retrieval strategy, not as fatal.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openrouter API error: status %d: %s", e.StatusCode, e.Body)
}

// Client performs authenticated calls against the OpenRouter chat completions API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenRouter client for the given model.
func NewClient(apiKey, model string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

type request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Plugins  []plugin  `json:"plugins,omitempty"`
}

type plugin struct {
	ID string `json:"id"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content     string       `json:"content"`
			Annotations []Annotation `json:"annotations"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion performs a single completion call. useWebPlugin toggles
// whether the backend may search the web as part of answering.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, useWebPlugin bool) (ChatResult, error) {
	reqBody := request{
		Model:    c.model,
		Messages: messages,
	}
	if useWebPlugin {
		reqBody.Plugins = []plugin{{ID: "web"}}
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return ChatResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return ChatResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return ChatResult{}, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return ChatResult{}, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var chatResp response
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return ChatResult{}, fmt.Errorf("decode response: %w", err)
	}

	c.metrics.UpstreamRequests.WithLabelValues("success").Inc()

	if len(chatResp.Choices) == 0 {
		// Treated as an empty answer; the generator substitutes placeholder text.
		c.logger.Warn("chat completion returned no choices", "model", c.model)
		return ChatResult{}, nil
	}

	msg := chatResp.Choices[0].Message
	return ChatResult{Content: msg.Content, Annotations: msg.Annotations}, nil
}
