package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ist = 330

func TestResolveWindow_AfterCivilMidnight(t *testing.T) {
	// 20:00 UTC is 01:30 the next civil day at +05:30
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	w := ResolveWindow(now, ist)

	assert.Equal(t, "2024-03-11", w.Label)
	assert.Equal(t, time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 3, 11, 18, 29, 59, int(999*time.Millisecond), time.UTC), w.End)
	assert.Equal(t, "UTC+05:30", w.ZoneLabel())
}

func TestResolveWindow_BeforeCivilMidnight(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 29, 0, 0, time.UTC)
	w := ResolveWindow(now, ist)

	assert.Equal(t, "2024-03-10", w.Label)
	assert.Equal(t, time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC), w.Start)
}

func TestResolveWindow_IgnoresInputZone(t *testing.T) {
	utc := time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC)
	other := utc.In(time.FixedZone("X", -7*3600))

	assert.Equal(t, ResolveWindow(utc, ist), ResolveWindow(other, ist))
}

func TestResolveWindow_ContainsNowAndSpansOneDay(t *testing.T) {
	offsets := []int{0, ist, -300, 840, -720}
	now := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)

	for _, off := range offsets {
		w := ResolveWindow(now, off)
		assert.True(t, w.Contains(now), "offset %d", off)
		assert.Equal(t, 24*time.Hour-time.Millisecond, w.End.Sub(w.Start), "offset %d", off)

		civilStart := w.Start.In(FixedZone(off))
		assert.Zero(t, civilStart.Hour())
		assert.Zero(t, civilStart.Minute())
		assert.Equal(t, w.Label, civilStart.Format(LabelLayout))
	}
}

func TestTimeWindow_ContainsBounds(t *testing.T) {
	w := ResolveWindow(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), 0)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Millisecond)))
	assert.False(t, w.Contains(w.End.Add(time.Millisecond)))
}

func TestResolveWindowForDate(t *testing.T) {
	w, err := ResolveWindowForDate("2024-06-01", ist)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", w.Label)
	assert.Equal(t, time.Date(2024, 5, 31, 18, 30, 0, 0, time.UTC), w.Start)

	_, err = ResolveWindowForDate("01/06/2024", ist)
	assert.Error(t, err)
}

func TestZoneLabel(t *testing.T) {
	assert.Equal(t, "UTC+05:30", ZoneLabel(330))
	assert.Equal(t, "UTC+00:00", ZoneLabel(0))
	assert.Equal(t, "UTC-03:30", ZoneLabel(-210))
}
