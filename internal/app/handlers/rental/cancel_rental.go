package rental

import (
	"context"
	"time"

	"gearbook/internal/app/outbox"
	"gearbook/internal/app/policies"
	"gearbook/internal/app/uow"
)

const cancelRentalName = "rental.cancel"

// CancelRentalCommand lets the renter withdraw a request before paying.
type CancelRentalCommand struct {
	RentalID string
	RenterID string
}

func (c CancelRentalCommand) Name() string { return cancelRentalName }

func (c CancelRentalCommand) Authorize(p policies.Principal) error {
	if p.Is(c.RenterID) || p.IsAdmin() {
		return nil
	}
	return policies.ErrUnauthorized
}

type CancelRentalResult struct {
	RentalID string `json:"rental_id"`
	Status   string `json:"status"`
}

type CancelRentalHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *CancelRentalHandler) Handle(ctx context.Context, cmd CancelRentalCommand) (*CancelRentalResult, error) {
	scope, ctx, err := openScope(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer scope.Close(ctx)
	unit := scope.unit

	r, err := unit.Rentals().ByID(ctx, cmd.RentalID)
	if err != nil {
		return nil, err
	}
	if r.RenterID != cmd.RenterID {
		return nil, policies.ErrUnauthorized
	}
	if err := r.Cancel(h.now()); err != nil {
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
	return &CancelRentalResult{RentalID: r.ID, Status: string(r.Status)}, nil
}

func (h *CancelRentalHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}
