package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end must be after start")
)

// Range represents a half-open interval [Start, End). Timestamps are the
// single source of truth; day-granularity views are derived, never stored.
type Range struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Range, error) {
	r := Range{Start: start.UTC(), End: end.UTC()}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

func (r Range) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrInvalidRange
	}
	if !r.End.After(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Nights returns the whole number of 24h periods covered by the range.
// A Monday–Wednesday rental is two nights.
func (r Range) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Hours returns the exact fractional duration in hours. Callers that bill
// hourly rely on this not being rounded up.
func (r Range) Hours() float64 {
	return r.End.Sub(r.Start).Hours()
}

// Days returns every calendar day the range touches, as UTC midnights.
// An hourly rental from 10:00 to 12:00 still touches one full day; the
// checkout day of a multi-night rental is not touched unless the end
// timestamp reaches into it.
func (r Range) Days() []time.Time {
	days := make([]time.Time, 0, r.Nights()+1)
	for d := DayOf(r.Start); d.Before(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

func (r Range) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(r.Start) && t.Before(r.End)
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a day for use as a set/index key.
func DayKey(t time.Time) string {
	return DayOf(t).Format("2006-01-02")
}

// IsWeekendNight reports whether a night starting on the given day is billed
// at the weekend rate (Friday and Saturday nights).
func IsWeekendNight(day time.Time) bool {
	switch day.UTC().Weekday() {
	case time.Friday, time.Saturday:
		return true
	default:
		return false
	}
}
