package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/prygl-status-service/internal/adapter/http"
	"github.com/couchcryptid/prygl-status-service/internal/cache"
	"github.com/couchcryptid/prygl-status-service/internal/domain"
	"github.com/couchcryptid/prygl-status-service/internal/observability"
)

type fakeCache struct {
	entry   domain.CacheEntry
	state   cache.State
	saveErr error

	lookups int
	saved   []domain.CacheEntry
}

func (c *fakeCache) Lookup(_ context.Context) (domain.CacheEntry, cache.State) {
	c.lookups++
	return c.entry, c.state
}

func (c *fakeCache) Save(_ context.Context, entry domain.CacheEntry) error {
	c.saved = append(c.saved, entry)
	return c.saveErr
}

type fakeGenerator struct {
	report domain.IceStatusReport
	err    error
	calls  int
}

func (g *fakeGenerator) Generate(_ context.Context) (domain.IceStatusReport, error) {
	g.calls++
	return g.report, g.err
}

type fakePublisher struct {
	published []domain.IceStatusReport
	err       error
}

func (p *fakePublisher) PublishReport(_ context.Context, report domain.IceStatusReport) error {
	p.published = append(p.published, report)
	return p.err
}

func sampleReport(generatedAt time.Time) domain.IceStatusReport {
	return domain.IceStatusReport{
		Summary:     "Ice is 11cm, skating allowed.",
		SummaryCS:   "Led má 11 cm, bruslení povoleno.",
		CanSkate:    domain.VerdictYes,
		GeneratedAt: generatedAt,
		LastUpdated: generatedAt.Format("2 Jan 2006 15:04 MST"),
		Sources:     []domain.Source{{Title: "prygl.net", URI: "https://prygl.net"}},
		Warnings:    []string{},
	}
}

func newHandler(c *fakeCache, g *fakeGenerator, p *fakePublisher) *httpadapter.StatusHandler {
	h := &httpadapter.StatusHandler{
		Generator: g,
		Metrics:   observability.NewMetricsForTesting(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if c != nil {
		h.Cache = c
	}
	if p != nil {
		h.Publisher = p
	}
	return h
}

func serveStatus(h *httpadapter.StatusHandler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) domain.IceStatusReport {
	t.Helper()
	var report domain.IceStatusReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	return report
}

func TestHandleStatus_CacheHitServedWithoutGeneration(t *testing.T) {
	generatedAt := time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC)
	c := &fakeCache{
		entry: domain.CacheEntry{GeneratedAt: generatedAt, Report: sampleReport(generatedAt)},
		state: cache.StateHit,
	}
	g := &fakeGenerator{}
	h := newHandler(c, g, nil)

	rec := serveStatus(h, "/api/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-maxage=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, 0, g.calls, "a hit must not trigger generation")
	assert.Empty(t, c.saved, "a hit must not rewrite the slot")

	report := decodeReport(t, rec)
	assert.Equal(t, generatedAt, report.GeneratedAt)
}

func TestHandleStatus_StaleEntryRegenerates(t *testing.T) {
	staleAt := time.Date(2026, time.January, 15, 8, 0, 0, 0, time.UTC)
	freshAt := time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC)
	c := &fakeCache{
		entry: domain.CacheEntry{GeneratedAt: staleAt, Report: sampleReport(staleAt)},
		state: cache.StateStale,
	}
	g := &fakeGenerator{report: sampleReport(freshAt)}
	h := newHandler(c, g, nil)

	rec := serveStatus(h, "/api/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-maxage=86400, stale-while-revalidate=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, 1, g.calls)

	require.Len(t, c.saved, 1)
	assert.Equal(t, freshAt, c.saved[0].GeneratedAt)
	assert.Equal(t, freshAt, decodeReport(t, rec).GeneratedAt)
}

func TestHandleStatus_CacheErrorStillServes(t *testing.T) {
	freshAt := time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC)
	c := &fakeCache{state: cache.StateError}
	g := &fakeGenerator{report: sampleReport(freshAt)}
	h := newHandler(c, g, nil)

	rec := serveStatus(h, "/api/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.VerdictYes, decodeReport(t, rec).CanSkate)
}

func TestHandleStatus_ForceBypassesLookupButPersists(t *testing.T) {
	cachedAt := time.Date(2026, time.January, 17, 7, 0, 0, 0, time.UTC)
	freshAt := time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC)
	c := &fakeCache{
		entry: domain.CacheEntry{GeneratedAt: cachedAt, Report: sampleReport(cachedAt)},
		state: cache.StateHit,
	}
	g := &fakeGenerator{report: sampleReport(freshAt)}
	h := newHandler(c, g, nil)

	rec := serveStatus(h, "/api/status?force=1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, c.lookups, "force skips the lookup entirely")
	assert.Equal(t, 1, g.calls)
	require.Len(t, c.saved, 1, "forced regeneration still persists")
	assert.Empty(t, rec.Header().Get("Cache-Control"), "forced responses are not intermediary-cacheable")
	assert.Equal(t, freshAt, decodeReport(t, rec).GeneratedAt)
}

func TestHandleStatus_OtherForceValuesIgnored(t *testing.T) {
	generatedAt := time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC)
	c := &fakeCache{
		entry: domain.CacheEntry{GeneratedAt: generatedAt, Report: sampleReport(generatedAt)},
		state: cache.StateHit,
	}
	g := &fakeGenerator{}
	h := newHandler(c, g, nil)

	serveStatus(h, "/api/status?force=true")

	assert.Equal(t, 1, c.lookups, "only force=1 bypasses the cache")
	assert.Equal(t, 0, g.calls)
}

func TestHandleStatus_GenerationFailure(t *testing.T) {
	g := &fakeGenerator{err: errors.New("upstream down")}
	h := newHandler(nil, g, nil)

	rec := serveStatus(h, "/api/status")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "upstream down")
}

func TestHandleStatus_SaveFailureDoesNotFailRequest(t *testing.T) {
	freshAt := time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC)
	c := &fakeCache{state: cache.StateMiss, saveErr: errors.New("store unreachable")}
	g := &fakeGenerator{report: sampleReport(freshAt)}
	h := newHandler(c, g, nil)

	rec := serveStatus(h, "/api/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, freshAt, decodeReport(t, rec).GeneratedAt)
}

func TestHandleStatus_PublishesFreshReports(t *testing.T) {
	freshAt := time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC)
	g := &fakeGenerator{report: sampleReport(freshAt)}
	p := &fakePublisher{}
	h := newHandler(nil, g, p)

	rec := serveStatus(h, "/api/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, p.published, 1)
	assert.Equal(t, freshAt, p.published[0].GeneratedAt)
}

func TestHandleStatus_PublishFailureDoesNotFailRequest(t *testing.T) {
	freshAt := time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC)
	g := &fakeGenerator{report: sampleReport(freshAt)}
	p := &fakePublisher{err: errors.New("broker down")}
	h := newHandler(nil, g, p)

	rec := serveStatus(h, "/api/status")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleStatus_NoCacheConfigured(t *testing.T) {
	freshAt := time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC)
	g := &fakeGenerator{report: sampleReport(freshAt)}
	h := newHandler(nil, g, nil)

	rec := serveStatus(h, "/api/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, g.calls)
}
