package availability

import (
	"context"
	"errors"
	"time"

	"gearbook/internal/domain/shared/daterange"
)

var (
	ErrDateConflict = errors.New("availability: requested dates are not available")
	ErrNotReserved  = errors.New("availability: no reservation held by this reference")
)

// HoldKind distinguishes renter reservations from owner blocks.
type HoldKind string

const (
	HoldReservation HoldKind = "RESERVATION"
	HoldOwnerBlock  HoldKind = "OWNER_BLOCK"
)

// Hold marks a single calendar day as taken. Reference identifies the rental
// (or owner block) that owns the day, so releases and idempotent re-reserves
// can find their own rows.
type Hold struct {
	Day       time.Time
	Kind      HoldKind
	Reference string
}

// Calendar tracks day-granularity availability for one item. Even hourly
// rentals hold every calendar day they touch; two hourly rentals on the same
// day therefore conflict.
type Calendar struct {
	ItemID  string
	Holds   map[string]Hold // keyed by daterange.DayKey
	Version int64
}

func NewCalendar(itemID string) *Calendar {
	return &Calendar{
		ItemID: itemID,
		Holds:  map[string]Hold{},
	}
}

// IsAvailable reports whether every day touched by the period is free.
// Days already held by the given reference count as free, which makes
// Reserve idempotent for retried commands.
func (c *Calendar) IsAvailable(period daterange.Range, reference string) bool {
	for _, day := range period.Days() {
		hold, taken := c.Holds[daterange.DayKey(day)]
		if taken && hold.Reference != reference {
			return false
		}
	}
	return true
}

// Reserve takes every day the period touches on behalf of reference.
// Calling it twice with the same reference is a no-op for days already
// held; any day held by a different reference fails the whole call.
func (c *Calendar) Reserve(period daterange.Range, reference string) error {
	return c.hold(period, reference, HoldReservation)
}

// BlockDays lets the owner take a range out of circulation without a rental.
func (c *Calendar) BlockDays(period daterange.Range, reference string) error {
	return c.hold(period, reference, HoldOwnerBlock)
}

func (c *Calendar) hold(period daterange.Range, reference string, kind HoldKind) error {
	if err := period.Validate(); err != nil {
		return err
	}
	if !c.IsAvailable(period, reference) {
		return ErrDateConflict
	}
	for _, day := range period.Days() {
		c.Holds[daterange.DayKey(day)] = Hold{Day: day, Kind: kind, Reference: reference}
	}
	return nil
}

// Release frees every day held by the given reference. Releasing a
// reference that holds nothing is an error so callers notice stale state.
func (c *Calendar) Release(reference string) error {
	released := false
	for key, hold := range c.Holds {
		if hold.Reference == reference {
			delete(c.Holds, key)
			released = true
		}
	}
	if !released {
		return ErrNotReserved
	}
	return nil
}

// HeldDays returns the sorted-by-insertion snapshot of taken days within the
// window, for calendar views.
func (c *Calendar) HeldDays(window daterange.Range) []Hold {
	var out []Hold
	for _, day := range window.Days() {
		if hold, ok := c.Holds[daterange.DayKey(day)]; ok {
			out = append(out, hold)
		}
	}
	return out
}

// Repository persists calendars with optimistic concurrency.
type Repository interface {
	ByItemID(ctx context.Context, itemID string) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

var ErrCalendarNotFound = errors.New("availability: calendar not found")
