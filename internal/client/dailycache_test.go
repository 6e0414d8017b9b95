package client

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/prygl-status-service/internal/domain"
)

// memKV is an in-memory KV for exercising the daily cache without sqlite.
type memKV struct {
	data   map[string]string
	getErr error
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Get(key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memKV) DeleteWhere(pred func(key string) bool) error {
	for key := range m.data {
		if pred(key) {
			delete(m.data, key)
		}
	}
	return nil
}

func testReport() domain.IceStatusReport {
	return domain.IceStatusReport{
		Summary:   "Ice is solid.",
		SummaryCS: "Led je pevný.",
		CanSkate:  domain.VerdictYes,
		Sources:   []domain.Source{},
		Warnings:  []string{},
	}
}

func TestCalendarDayCache_PutThenGet(t *testing.T) {
	kv := newMemKV()
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.January, 17, 12, 0, 0, 0, time.UTC))
	c := NewCalendarDayCache(kv, clock)

	_, ok := c.Get()
	assert.False(t, ok, "empty store is a miss")

	require.NoError(t, c.Put(testReport()))

	got, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, testReport(), got)
	assert.Contains(t, kv.data, "report:2026-01-17")
}

func TestCalendarDayCache_MissesAfterMidnight(t *testing.T) {
	kv := newMemKV()
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.January, 17, 23, 50, 0, 0, time.UTC))
	c := NewCalendarDayCache(kv, clock)

	require.NoError(t, c.Put(testReport()))
	_, ok := c.Get()
	require.True(t, ok)

	clock.Advance(20 * time.Minute)
	_, ok = c.Get()
	assert.False(t, ok, "yesterday's record never serves today")
}

func TestCalendarDayCache_PutPurgesPriorDays(t *testing.T) {
	kv := newMemKV()
	kv.data["report:2026-01-15"] = "{}"
	kv.data["report:2026-01-16"] = "{}"
	kv.data["unrelated-key"] = "keep me"

	clock := clockwork.NewFakeClockAt(time.Date(2026, time.January, 17, 12, 0, 0, 0, time.UTC))
	c := NewCalendarDayCache(kv, clock)

	require.NoError(t, c.Put(testReport()))

	assert.NotContains(t, kv.data, "report:2026-01-15")
	assert.NotContains(t, kv.data, "report:2026-01-16")
	assert.Contains(t, kv.data, "report:2026-01-17")
	assert.Contains(t, kv.data, "unrelated-key", "purge only touches report keys")
}

func TestCalendarDayCache_FailuresAreMisses(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.January, 17, 12, 0, 0, 0, time.UTC))

	t.Run("read error", func(t *testing.T) {
		kv := newMemKV()
		kv.getErr = assert.AnError
		_, ok := NewCalendarDayCache(kv, clock).Get()
		assert.False(t, ok)
	})

	t.Run("corrupted record", func(t *testing.T) {
		kv := newMemKV()
		kv.data["report:2026-01-17"] = "not-json{{{"
		_, ok := NewCalendarDayCache(kv, clock).Get()
		assert.False(t, ok)
	})
}
