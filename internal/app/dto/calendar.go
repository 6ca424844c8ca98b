package dto

import (
	"time"

	"gearbook/internal/domain/availability"
)

type CalendarDayView struct {
	Day       time.Time `json:"day"`
	Kind      string    `json:"kind"`
	Reference string    `json:"reference,omitempty"`
}

type CalendarView struct {
	ItemID string            `json:"item_id"`
	Taken  []CalendarDayView `json:"taken"`
}

// NewCalendarView hides hold references from non-owners so renters only see
// that a day is taken, not by whom.
func NewCalendarView(itemID string, holds []availability.Hold, includeRefs bool) CalendarView {
	view := CalendarView{ItemID: itemID, Taken: make([]CalendarDayView, 0, len(holds))}
	for _, h := range holds {
		day := CalendarDayView{Day: h.Day, Kind: string(h.Kind)}
		if includeRefs {
			day.Reference = h.Reference
		}
		view.Taken = append(view.Taken, day)
	}
	return view
}
