package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gearbook/internal/app/policies"
	domainavailability "gearbook/internal/domain/availability"
	domainitems "gearbook/internal/domain/items"
	domainpricing "gearbook/internal/domain/pricing"
	domainrange "gearbook/internal/domain/shared/daterange"
	"gearbook/internal/infra/storage/memory"
)

func newFactory(t *testing.T) (memory.Factory, *memory.CalendarRepository) {
	t.Helper()
	items := memory.NewItemRepository()
	calendars := memory.NewCalendarRepository()
	factory := memory.Factory{
		ItemsRepo:     items,
		RentalsRepo:   memory.NewRentalRepository(),
		CalendarsRepo: calendars,
		UsersRepo:     memory.NewUserRepository(),
	}

	item, err := domainitems.NewItem("item-1", "owner-1", "Bosch rotary hammer", domainpricing.RateCard{
		Currency:       "USD",
		DailyRateCents: 4500,
	})
	require.NoError(t, err)
	require.NoError(t, items.Save(context.Background(), item))
	return factory, calendars
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestBlockAndUnblock(t *testing.T) {
	factory, calendars := newFactory(t)
	ctx := context.Background()
	h := &BlockDatesHandler{UoWFactory: factory}

	res, err := h.HandleBlock(ctx, BlockDatesCommand{
		ItemID:   "item-1",
		OwnerID:  "owner-1",
		Start:    day(10),
		End:      day(12),
		BlockRef: "block-maintenance",
	})
	require.NoError(t, err)
	require.Equal(t, "block-maintenance", res.BlockRef)

	cal, err := calendars.ByItemID(ctx, "item-1")
	require.NoError(t, err)
	period, err := domainrange.New(day(10), day(12))
	require.NoError(t, err)
	require.False(t, cal.IsAvailable(period, "rental-1"))

	t.Run("unblock frees the days", func(t *testing.T) {
		_, err := h.HandleUnblock(ctx, UnblockDatesCommand{
			ItemID:   "item-1",
			OwnerID:  "owner-1",
			BlockRef: "block-maintenance",
		})
		require.NoError(t, err)
		cal, err := calendars.ByItemID(ctx, "item-1")
		require.NoError(t, err)
		require.True(t, cal.IsAvailable(period, "rental-1"))
	})

	t.Run("unblock unknown reference", func(t *testing.T) {
		_, err := h.HandleUnblock(ctx, UnblockDatesCommand{
			ItemID:   "item-1",
			OwnerID:  "owner-1",
			BlockRef: "block-missing",
		})
		require.ErrorIs(t, err, domainavailability.ErrNotReserved)
	})
}

func TestBlockRequiresOwnership(t *testing.T) {
	factory, _ := newFactory(t)
	h := &BlockDatesHandler{UoWFactory: factory}

	_, err := h.HandleBlock(context.Background(), BlockDatesCommand{
		ItemID:   "item-1",
		OwnerID:  "not-the-owner",
		Start:    day(10),
		End:      day(12),
		BlockRef: "block-1",
	})
	require.ErrorIs(t, err, policies.ErrUnauthorized)
}

func TestBlockConflictsWithReservation(t *testing.T) {
	factory, calendars := newFactory(t)
	ctx := context.Background()

	cal := domainavailability.NewCalendar("item-1")
	period, err := domainrange.New(day(10), day(12))
	require.NoError(t, err)
	require.NoError(t, cal.Reserve(period, "rental-1"))
	require.NoError(t, calendars.Save(ctx, cal))

	h := &BlockDatesHandler{UoWFactory: factory}
	_, err = h.HandleBlock(ctx, BlockDatesCommand{
		ItemID:   "item-1",
		OwnerID:  "owner-1",
		Start:    day(11),
		End:      day(13),
		BlockRef: "block-1",
	})
	require.ErrorIs(t, err, domainavailability.ErrDateConflict)
}

func TestGetCalendar(t *testing.T) {
	factory, calendars := newFactory(t)
	ctx := context.Background()

	cal := domainavailability.NewCalendar("item-1")
	period, err := domainrange.New(day(10), day(12))
	require.NoError(t, err)
	require.NoError(t, cal.Reserve(period, "rental-1"))
	require.NoError(t, calendars.Save(ctx, cal))

	h := &GetCalendarHandler{UoWFactory: factory}

	t.Run("owner sees references", func(t *testing.T) {
		view, err := h.Handle(ctx, GetCalendarQuery{
			ItemID:   "item-1",
			From:     day(1),
			To:       day(31),
			CallerID: "owner-1",
		})
		require.NoError(t, err)
		require.Len(t, view.Taken, 2)
		require.Equal(t, "rental-1", view.Taken[0].Reference)
	})

	t.Run("renters only see taken days", func(t *testing.T) {
		view, err := h.Handle(ctx, GetCalendarQuery{
			ItemID:   "item-1",
			From:     day(1),
			To:       day(31),
			CallerID: "someone-else",
		})
		require.NoError(t, err)
		require.Len(t, view.Taken, 2)
		require.Empty(t, view.Taken[0].Reference)
	})

	t.Run("no calendar yet means everything is free", func(t *testing.T) {
		factory2, _ := newFactory(t)
		h2 := &GetCalendarHandler{UoWFactory: factory2}
		view, err := h2.Handle(ctx, GetCalendarQuery{
			ItemID:   "item-1",
			From:     day(1),
			To:       day(31),
			CallerID: "owner-1",
		})
		require.NoError(t, err)
		require.Empty(t, view.Taken)
	})
}
