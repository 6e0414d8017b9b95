package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/prygl-status-service/internal/cache"
	"github.com/couchcryptid/prygl-status-service/internal/domain"
	"github.com/couchcryptid/prygl-status-service/internal/observability"
)

// Cache-control directive per serve path. A freshly minted report is servable
// by intermediaries for a full day; an aging-but-valid cached entry only for a
// shorter window since it is already partway through its freshness budget.
const (
	cacheControlFresh = "s-maxage=86400, stale-while-revalidate=3600"
	cacheControlAging = "s-maxage=3600"
)

// ReportCache gates whether generation runs at all.
type ReportCache interface {
	Lookup(ctx context.Context) (domain.CacheEntry, cache.State)
	Save(ctx context.Context, entry domain.CacheEntry) error
}

// ReportGenerator synthesizes a fresh report.
type ReportGenerator interface {
	Generate(ctx context.Context) (domain.IceStatusReport, error)
}

// ReportPublisher emits an event for each freshly generated report.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report domain.IceStatusReport) error
}

// StatusHandler glues cache lookup, generation, and cache write-back for the
// public endpoint. Cache and Publisher may be nil when their backing systems
// are not configured; the handler then always regenerates.
type StatusHandler struct {
	Cache     ReportCache
	Generator ReportGenerator
	Publisher ReportPublisher
	Metrics   *observability.Metrics
	Logger    *slog.Logger
}

// CheckReadiness reports readiness for the /readyz route. The service holds no
// warm-up state; it can serve as soon as it is listening.
func (h *StatusHandler) CheckReadiness(_ context.Context) error {
	return nil
}

// HandleStatus serves GET /api/status. "?force=1" bypasses the cache lookup
// entirely but still persists the regenerated report.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	force := r.URL.Query().Get("force") == "1"
	forced := boolLabel(force)

	if !force && h.Cache != nil {
		if entry, state := h.Cache.Lookup(ctx); state == cache.StateHit {
			h.Metrics.StatusRequests.WithLabelValues("cached", forced).Inc()
			w.Header().Set("Cache-Control", cacheControlAging)
			writeJSON(w, http.StatusOK, entry.Report)
			return
		}
		// Stale, missing, and unreadable entries all fall through to regeneration.
	}

	report, err := h.Generator.Generate(ctx)
	if err != nil {
		h.Logger.Error("report generation failed", "error", err, "forced", force)
		h.Metrics.StatusRequests.WithLabelValues("error", forced).Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	entry := domain.CacheEntry{GeneratedAt: report.GeneratedAt, Report: report}
	if h.Cache != nil {
		// Persistence failures are logged only; staleness beats request failure.
		if err := h.Cache.Save(ctx, entry); err != nil {
			h.Logger.Warn("cache write failed", "error", err)
		}
	}
	if h.Publisher != nil {
		if err := h.Publisher.PublishReport(ctx, report); err != nil {
			h.Logger.Warn("report event publish failed", "error", err)
		}
	}

	h.Metrics.StatusRequests.WithLabelValues("generated", forced).Inc()
	if !force {
		w.Header().Set("Cache-Control", cacheControlFresh)
	}
	writeJSON(w, http.StatusOK, report)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
