package rental

import (
	"context"
	"errors"
	"time"

	"gearbook/internal/app/commands"
	"gearbook/internal/app/middleware"
	"gearbook/internal/app/outbox"
	"gearbook/internal/app/policies"
	"gearbook/internal/app/uow"
	domainavailability "gearbook/internal/domain/availability"
	domainpricing "gearbook/internal/domain/pricing"
	domainrental "gearbook/internal/domain/rental"
	domainrange "gearbook/internal/domain/shared/daterange"
)

const requestRentalName = "rental.request"

var ErrUnitOfWorkRequired = errors.New("rental: unit of work required")

// RequestRentalCommand opens a rental request. CommandID doubles as the
// rental id so retries with the same idempotency key cannot mint duplicates.
type RequestRentalCommand struct {
	CommandID   string
	ItemID      string
	RenterID    string
	Start       time.Time
	End         time.Time
	BillingMode domainpricing.BillingMode
	Protection  domainpricing.ProtectionTier
	IdemKey     string
}

func (c RequestRentalCommand) Name() string { return requestRentalName }

func (c RequestRentalCommand) IdempotencyKey() string { return c.IdemKey }

func (c RequestRentalCommand) ResultPrototype() any { return &RequestRentalResult{} }

func (c RequestRentalCommand) Authorize(p policies.Principal) error {
	if !p.Is(c.RenterID) {
		return policies.ErrUnauthorized
	}
	return nil
}

type RequestRentalResult struct {
	RentalID string `json:"rental_id"`
	Status   string `json:"status"`
}

type RequestRentalHandler struct {
	UoWFactory uow.Factory
	Pricing    domainpricing.Calculator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *RequestRentalHandler) Handle(ctx context.Context, cmd RequestRentalCommand) (*RequestRentalResult, error) {
	scope, ctx, err := openScope(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer scope.Close(ctx)
	unit := scope.unit

	period, err := domainrange.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}
	now := h.now()
	if period.Start.Before(now.Add(-time.Hour)) {
		return nil, domainrange.ErrInvalidRange
	}

	item, err := unit.Items().ByID(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Rentable() {
		return nil, domainrental.ErrInvalidTransition
	}

	// Conflicts surface at request time, not only at payment.
	cal, err := unit.Calendars().ByItemID(ctx, item.ID)
	if err != nil && !errors.Is(err, domainavailability.ErrCalendarNotFound) {
		return nil, err
	}
	if cal != nil && !cal.IsAvailable(period, cmd.CommandID) {
		return nil, domainavailability.ErrDateConflict
	}

	quote, err := h.Pricing.QuoteFor(item.RateCard, period, cmd.BillingMode, cmd.Protection)
	if err != nil {
		return nil, err
	}

	r, err := domainrental.Request(cmd.CommandID, item.ID, item.Title, item.OwnerID, cmd.RenterID, period, quote, cmd.Protection, item.InstantBook, now)
	if err != nil {
		return nil, err
	}
	if err := unit.Rentals().Save(ctx, r); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, orJSONEncoder(h.Encoder), &r.EventRecorder); err != nil {
		return nil, err
	}
	if err := scope.Commit(ctx); err != nil {
		return nil, err
	}
	return &RequestRentalResult{RentalID: r.ID, Status: string(r.Status)}, nil
}

func (h *RequestRentalHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RequestRentalCommand, *RequestRentalResult] = (*RequestRentalHandler)(nil)
var _ middleware.IdempotentCommand = RequestRentalCommand{}
