// Package cache implements the rolling freshness window over the durable
// report slot. It decides whether a cached report may be served or a fresh
// generation is required; store failures degrade to regeneration and never
// surface to the caller.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/prygl-status-service/internal/domain"
	"github.com/couchcryptid/prygl-status-service/internal/observability"
)

const (
	// SlotKey is the single logical pathname holding the latest report.
	// There is no historical archive; each generation supersedes the slot.
	SlotKey = "prygl-status/latest.json"

	// SlotPrefix scopes store listings to this service's objects.
	SlotPrefix = "prygl-status/"

	// DefaultMaxAge is the rolling freshness window. 25 hours rather than 24
	// so a report generated at the same time every day stays valid until the
	// next one lands.
	DefaultMaxAge = 25 * time.Hour
)

// Object identifies a stored payload by logical pathname and download URL.
type Object struct {
	Pathname string `json:"pathname"`
	URL      string `json:"url"`
}

// Store is the durable blob store contract: content addressable by a fixed
// logical pathname, no transactions, no conditional writes.
type Store interface {
	List(ctx context.Context, prefix string) ([]Object, error)
	Download(ctx context.Context, url string) ([]byte, error)
	Put(ctx context.Context, pathname string, payload []byte) (Object, error)
}

// State classifies the outcome of a cache lookup.
type State int

const (
	StateHit   State = iota // entry found and within the freshness window
	StateStale              // entry found but aged out
	StateMiss               // no entry in the slot
	StateError              // store unreachable or payload unreadable
)

func (s State) String() string {
	switch s {
	case StateHit:
		return "hit"
	case StateStale:
		return "stale"
	case StateMiss:
		return "miss"
	default:
		return "error"
	}
}

// RollingWindowCache gates report generation behind the durable store slot.
type RollingWindowCache struct {
	store   Store
	slot    string
	prefix  string
	maxAge  time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a RollingWindowCache over the given store. A nil clock selects
// real time; tests inject a fake for freshness-boundary assertions.
func New(store Store, maxAge time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *RollingWindowCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &RollingWindowCache{
		store:   store,
		slot:    SlotKey,
		prefix:  SlotPrefix,
		maxAge:  maxAge,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Lookup locates the slot entry and classifies it against the freshness
// window. Any store or payload failure is logged and reported as StateError,
// which callers treat the same as a miss.
func (c *RollingWindowCache) Lookup(ctx context.Context) (domain.CacheEntry, State) {
	entry, state := c.lookup(ctx)
	c.metrics.CacheLookups.WithLabelValues(state.String()).Inc()
	return entry, state
}

func (c *RollingWindowCache) lookup(ctx context.Context) (domain.CacheEntry, State) {
	objects, err := c.store.List(ctx, c.prefix)
	if err != nil {
		c.logger.Warn("cache list failed, regenerating", "error", err)
		return domain.CacheEntry{}, StateError
	}

	var slotURL string
	for _, o := range objects {
		if o.Pathname == c.slot {
			slotURL = o.URL
			break
		}
	}
	if slotURL == "" {
		return domain.CacheEntry{}, StateMiss
	}

	payload, err := c.store.Download(ctx, slotURL)
	if err != nil {
		c.logger.Warn("cache download failed, regenerating", "error", err)
		return domain.CacheEntry{}, StateError
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		c.logger.Warn("cache payload unreadable, regenerating", "error", err)
		return domain.CacheEntry{}, StateError
	}

	if c.clock.Now().Sub(entry.GeneratedAt) >= c.maxAge {
		return entry, StateStale
	}
	return entry, StateHit
}

// Save persists a new entry into the slot. The returned error is for the
// caller to log and ignore: staleness is preferable to request failure.
func (c *RollingWindowCache) Save(ctx context.Context, entry domain.CacheEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		c.metrics.CacheWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if _, err := c.store.Put(ctx, c.slot, payload); err != nil {
		c.metrics.CacheWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("persist cache entry: %w", err)
	}
	c.metrics.CacheWrites.WithLabelValues("ok").Inc()
	return nil
}
