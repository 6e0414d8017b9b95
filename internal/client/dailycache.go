package client

import (
	"encoding/json"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/prygl-status-service/internal/domain"
)

// KV is the minimal key-value capability the daily cache needs. Implementations
// are injected so tests can substitute an in-memory store.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	DeleteWhere(pred func(key string) bool) error
}

const dayKeyPrefix = "report:"

// CalendarDayCache keeps at most one report per calendar date. It has no
// time-of-day freshness math, only date equality, so it can disagree with the
// service's rolling 25-hour window near midnight; that divergence is accepted.
type CalendarDayCache struct {
	kv    KV
	clock clockwork.Clock
}

// NewCalendarDayCache creates a daily cache over the given store. A nil clock
// selects real time.
func NewCalendarDayCache(kv KV, clock clockwork.Clock) *CalendarDayCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CalendarDayCache{kv: kv, clock: clock}
}

func (c *CalendarDayCache) todayKey() string {
	return dayKeyPrefix + c.clock.Now().Format("2006-01-02")
}

// Get returns today's cached report, if any. Read and decode failures are
// treated as misses.
func (c *CalendarDayCache) Get() (domain.IceStatusReport, bool) {
	raw, ok, err := c.kv.Get(c.todayKey())
	if err != nil || !ok {
		return domain.IceStatusReport{}, false
	}
	var report domain.IceStatusReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return domain.IceStatusReport{}, false
	}
	return report, true
}

// Put stores today's report and opportunistically purges entries from prior days.
func (c *CalendarDayCache) Put(report domain.IceStatusReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	today := c.todayKey()
	if err := c.kv.Set(today, string(data)); err != nil {
		return err
	}
	return c.kv.DeleteWhere(func(key string) bool {
		return strings.HasPrefix(key, dayKeyPrefix) && key != today
	})
}
