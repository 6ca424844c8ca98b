package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, start, end string) Range {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	e, err := time.Parse(time.RFC3339, end)
	require.NoError(t, err)
	r, err := New(s, e)
	require.NoError(t, err)
	return r
}

func TestNewRejectsInvertedRange(t *testing.T) {
	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	_, err := New(start, start)
	require.ErrorIs(t, err, ErrInvalidRange)
	_, err = New(start, start.Add(-time.Hour))
	require.ErrorIs(t, err, ErrInvalidRange)
	_, err = New(time.Time{}, start)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestNights(t *testing.T) {
	r := mustRange(t, "2026-03-02T10:00:00Z", "2026-03-04T10:00:00Z")
	require.Equal(t, 2, r.Nights())

	// Under 24 hours is zero nights, not one.
	short := mustRange(t, "2026-03-02T10:00:00Z", "2026-03-02T18:00:00Z")
	require.Equal(t, 0, short.Nights())
}

func TestHoursIsExact(t *testing.T) {
	r := mustRange(t, "2026-03-02T10:00:00Z", "2026-03-02T12:30:00Z")
	require.InDelta(t, 2.5, r.Hours(), 1e-9)
}

func TestDays(t *testing.T) {
	t.Run("hourly rental touches one day", func(t *testing.T) {
		r := mustRange(t, "2026-03-02T10:00:00Z", "2026-03-02T12:00:00Z")
		days := r.Days()
		require.Len(t, days, 1)
		require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), days[0])
	})
	t.Run("checkout morning touches checkout day", func(t *testing.T) {
		r := mustRange(t, "2026-03-02T10:00:00Z", "2026-03-04T10:00:00Z")
		days := r.Days()
		require.Len(t, days, 3)
		require.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), days[2])
	})
	t.Run("midnight checkout excludes the end day", func(t *testing.T) {
		r := mustRange(t, "2026-03-02T00:00:00Z", "2026-03-04T00:00:00Z")
		require.Len(t, r.Days(), 2)
	})
}

func TestOverlaps(t *testing.T) {
	a := mustRange(t, "2026-03-02T00:00:00Z", "2026-03-05T00:00:00Z")
	b := mustRange(t, "2026-03-04T00:00:00Z", "2026-03-08T00:00:00Z")
	c := mustRange(t, "2026-03-05T00:00:00Z", "2026-03-08T00:00:00Z")
	require.True(t, a.Overlaps(b))
	require.True(t, b.Overlaps(a))
	// Half-open ranges touching at the boundary do not overlap.
	require.False(t, a.Overlaps(c))
}

func TestContains(t *testing.T) {
	r := mustRange(t, "2026-03-02T00:00:00Z", "2026-03-04T00:00:00Z")
	require.True(t, r.Contains(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
	require.True(t, r.Contains(time.Date(2026, 3, 3, 23, 59, 59, 0, time.UTC)))
	require.False(t, r.Contains(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)))
}

func TestIsWeekendNight(t *testing.T) {
	require.True(t, IsWeekendNight(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)))  // Friday
	require.True(t, IsWeekendNight(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)))  // Saturday
	require.False(t, IsWeekendNight(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC))) // Sunday
	require.False(t, IsWeekendNight(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))) // Monday
}

func TestDayKey(t *testing.T) {
	require.Equal(t, "2026-03-02", DayKey(time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)))
}
