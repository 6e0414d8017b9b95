// Package generator orchestrates report synthesis: the direct-source path
// first, the search-assisted fallback only when the page fetch itself fails.
// The two paths run in strict order, never in parallel; the fallback is far
// more expensive.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/prygl-status-service/internal/adapter/openrouter"
	"github.com/couchcryptid/prygl-status-service/internal/domain"
	"github.com/couchcryptid/prygl-status-service/internal/observability"
)

// ModelCaller performs one authenticated call to the generation backend.
type ModelCaller interface {
	ChatCompletion(ctx context.Context, messages []openrouter.Message, useWebPlugin bool) (openrouter.ChatResult, error)
}

// PageFetcher retrieves the authoritative source page as bounded plain text.
type PageFetcher interface {
	FetchPageText(ctx context.Context) (string, error)
}

// Generator produces a finished IceStatusReport from the upstream collaborators.
type Generator struct {
	model     ModelCaller
	page      PageFetcher
	sourceURL string
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a Generator. sourceURL is cited on the direct path.
func New(model ModelCaller, page PageFetcher, sourceURL string, metrics *observability.Metrics, logger *slog.Logger) *Generator {
	return &Generator{
		model:     model,
		page:      page,
		sourceURL: sourceURL,
		metrics:   metrics,
		logger:    logger,
	}
}

// Generate synthesizes a fresh report. A poorly structured answer still yields
// a report (verdict UNSURE, placeholder summary); the fallback absorbs any
// direct-path failure, so only a failing fallback propagates an error.
func (g *Generator) Generate(ctx context.Context) (domain.IceStatusReport, error) {
	today := domain.Today()

	pageText, err := g.page.FetchPageText(ctx)
	if err == nil {
		report, genErr := g.timed(ctx, "direct", func(ctx context.Context) (domain.IceStatusReport, error) {
			return g.generateFromPage(ctx, today, pageText)
		})
		if genErr == nil {
			return report, nil
		}
		err = genErr
	}

	// Any direct-path failure advances here: the page being unreachable as
	// well as the model call itself failing on the page text.
	g.logger.Warn("direct path failed, falling back to web search", "error", err)
	return g.timed(ctx, "search", g.generateViaSearch(today))
}

func (g *Generator) timed(ctx context.Context, path string, gen func(context.Context) (domain.IceStatusReport, error)) (domain.IceStatusReport, error) {
	start := time.Now()
	report, err := gen(ctx)
	g.metrics.GenerationDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		g.metrics.Generations.WithLabelValues(path, "error").Inc()
		return domain.IceStatusReport{}, err
	}
	g.metrics.Generations.WithLabelValues(path, "success").Inc()
	g.logger.Info("report generated", "path", path, "verdict", report.CanSkate, "sources", len(report.Sources))
	return report, nil
}

// generateFromPage asks the model to summarize strictly from the supplied page
// text, search disabled. The page itself is the sole source citation.
func (g *Generator) generateFromPage(ctx context.Context, today, pageText string) (domain.IceStatusReport, error) {
	messages := []openrouter.Message{
		{Role: "user", Content: directPrompt(g.sourceHost(), today, pageText)},
	}
	res, err := g.model.ChatCompletion(ctx, messages, false)
	if err != nil {
		return domain.IceStatusReport{}, fmt.Errorf("direct-source generation: %w", err)
	}

	sources := []domain.Source{{Title: g.sourceHost(), URI: g.sourceURL}}
	return g.assemble(res.Content, sources), nil
}

// generateViaSearch lets the model perform its own web search. When the first
// reply is an intermediate tool invocation carrying retrieved citations, a
// second search-disabled call synthesizes from the citation contents; the
// citations then become the report's sources.
func (g *Generator) generateViaSearch(today string) func(context.Context) (domain.IceStatusReport, error) {
	return func(ctx context.Context) (domain.IceStatusReport, error) {
		prompt := searchPrompt(today)
		first, err := g.model.ChatCompletion(ctx, []openrouter.Message{{Role: "user", Content: prompt}}, true)
		if err != nil {
			return domain.IceStatusReport{}, fmt.Errorf("search-assisted generation: %w", err)
		}

		reply := classifyFirstReply(first)
		if reply.kind == replyFinal {
			return g.assemble(reply.text, nil), nil
		}

		second, err := g.model.ChatCompletion(ctx, []openrouter.Message{
			{Role: "user", Content: synthesisPrompt(reply.citations, prompt)},
		}, false)
		if err != nil {
			return domain.IceStatusReport{}, fmt.Errorf("citation synthesis: %w", err)
		}

		return g.assemble(second.Content, sourcesFromAnnotations(reply.citations)), nil
	}
}

// assemble parses the answer text into a report, substituting the placeholder
// for an entirely empty answer.
func (g *Generator) assemble(content string, sources []domain.Source) domain.IceStatusReport {
	if strings.TrimSpace(content) == "" {
		content = placeholderSummary
	}
	parsed := domain.ParseModelOutput(content)
	return domain.NewReport(parsed, sources)
}

func (g *Generator) sourceHost() string {
	if u, err := url.Parse(g.sourceURL); err == nil && u.Host != "" {
		return u.Host
	}
	return g.sourceURL
}

func sourcesFromAnnotations(citations []openrouter.Annotation) []domain.Source {
	sources := make([]domain.Source, 0, len(citations))
	for _, a := range citations {
		title := a.URLCitation.Title
		if title == "" {
			title = "Source"
		}
		sources = append(sources, domain.Source{Title: title, URI: a.URLCitation.URL})
	}
	return sources
}
