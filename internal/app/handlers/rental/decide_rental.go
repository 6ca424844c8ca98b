package rental

import (
	"context"
	"time"

	"gearbook/internal/app/outbox"
	"gearbook/internal/app/policies"
	"gearbook/internal/app/uow"
)

const (
	approveRentalName = "rental.approve"
	rejectRentalName  = "rental.reject"
)

// ApproveRentalCommand moves a pending request to awaiting payment. Only the
// item owner (or an admin) may decide.
type ApproveRentalCommand struct {
	RentalID string
	OwnerID  string
}

func (c ApproveRentalCommand) Name() string { return approveRentalName }

func (c ApproveRentalCommand) Authorize(p policies.Principal) error {
	if p.Is(c.OwnerID) || p.IsAdmin() {
		return nil
	}
	return policies.ErrUnauthorized
}

type RejectRentalCommand struct {
	RentalID string
	OwnerID  string
}

func (c RejectRentalCommand) Name() string { return rejectRentalName }

func (c RejectRentalCommand) Authorize(p policies.Principal) error {
	if p.Is(c.OwnerID) || p.IsAdmin() {
		return nil
	}
	return policies.ErrUnauthorized
}

type DecideRentalResult struct {
	RentalID string `json:"rental_id"`
	Status   string `json:"status"`
}

// DecideRentalHandler handles both decisions; they share every step except
// the aggregate call.
type DecideRentalHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Clock      func() time.Time
}

func (h *DecideRentalHandler) HandleApprove(ctx context.Context, cmd ApproveRentalCommand) (*DecideRentalResult, error) {
	return h.decide(ctx, cmd.RentalID, cmd.OwnerID, true)
}

func (h *DecideRentalHandler) HandleReject(ctx context.Context, cmd RejectRentalCommand) (*DecideRentalResult, error) {
	return h.decide(ctx, cmd.RentalID, cmd.OwnerID, false)
}

func (h *DecideRentalHandler) decide(ctx context.Context, rentalID, ownerID string, approve bool) (*DecideRentalResult, error) {
	scope, ctx, err := openScope(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer scope.Close(ctx)
	unit := scope.unit

	r, err := unit.Rentals().ByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if r.OwnerID != ownerID {
		return nil, policies.ErrUnauthorized
	}

	now := h.now()
	if approve {
		err = r.Approve(now)
	} else {
		err = r.Reject(now)
	}
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
	if h.Notifier != nil {
		_ = h.Notifier.RentalDecided(ctx, r.RenterID, r.ID, approve)
	}
	return &DecideRentalResult{RentalID: r.ID, Status: string(r.Status)}, nil
}

func (h *DecideRentalHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}
