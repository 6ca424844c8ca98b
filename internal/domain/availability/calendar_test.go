package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gearbook/internal/domain/shared/daterange"
)

func span(t *testing.T, startDay, endDay int) daterange.Range {
	t.Helper()
	r, err := daterange.New(
		time.Date(2026, 3, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, endDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return r
}

func TestReserveConflicts(t *testing.T) {
	cal := NewCalendar("item-1")
	require.NoError(t, cal.Reserve(span(t, 2, 5), "rental-a"))

	t.Run("overlapping reference conflicts", func(t *testing.T) {
		err := cal.Reserve(span(t, 4, 6), "rental-b")
		require.ErrorIs(t, err, ErrDateConflict)
		// The failed call must not leave partial holds behind.
		require.True(t, cal.IsAvailable(span(t, 5, 6), "rental-b"))
	})

	t.Run("adjacent range is free", func(t *testing.T) {
		require.NoError(t, cal.Reserve(span(t, 5, 7), "rental-b"))
	})
}

func TestReserveIsIdempotentPerReference(t *testing.T) {
	cal := NewCalendar("item-1")
	require.NoError(t, cal.Reserve(span(t, 2, 5), "rental-a"))
	// A redelivered confirmation reserves the same days again.
	require.NoError(t, cal.Reserve(span(t, 2, 5), "rental-a"))
	require.Len(t, cal.HeldDays(span(t, 1, 10)), 3)
}

func TestIsAvailableTreatsOwnHoldsAsFree(t *testing.T) {
	cal := NewCalendar("item-1")
	require.NoError(t, cal.Reserve(span(t, 2, 5), "rental-a"))
	require.True(t, cal.IsAvailable(span(t, 2, 5), "rental-a"))
	require.False(t, cal.IsAvailable(span(t, 2, 5), "rental-b"))
}

func TestRelease(t *testing.T) {
	cal := NewCalendar("item-1")
	require.NoError(t, cal.Reserve(span(t, 2, 5), "rental-a"))
	require.NoError(t, cal.BlockDays(span(t, 10, 12), "maintenance"))

	require.NoError(t, cal.Release("rental-a"))
	require.True(t, cal.IsAvailable(span(t, 2, 5), "anyone"))
	// The owner block is untouched.
	require.False(t, cal.IsAvailable(span(t, 10, 12), "anyone"))

	require.ErrorIs(t, cal.Release("rental-a"), ErrNotReserved)
}

func TestOwnerBlockConflictsWithReservation(t *testing.T) {
	cal := NewCalendar("item-1")
	require.NoError(t, cal.BlockDays(span(t, 2, 5), "maintenance"))
	require.ErrorIs(t, cal.Reserve(span(t, 3, 4), "rental-a"), ErrDateConflict)
}

func TestHeldDaysWindow(t *testing.T) {
	cal := NewCalendar("item-1")
	require.NoError(t, cal.Reserve(span(t, 2, 5), "rental-a"))

	holds := cal.HeldDays(span(t, 3, 20))
	require.Len(t, holds, 2)
	for _, h := range holds {
		require.Equal(t, HoldReservation, h.Kind)
		require.Equal(t, "rental-a", h.Reference)
	}
}
