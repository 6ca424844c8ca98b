package rental

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gearbook/internal/app/outbox"
	"gearbook/internal/app/policies"
	"gearbook/internal/app/uow"
	domainavailability "gearbook/internal/domain/availability"
	domainrental "gearbook/internal/domain/rental"
	"gearbook/internal/domain/settlement"
)

const (
	adminRefundName   = "rental.admin.refund"
	releasePayoutName = "rental.admin.payout"
)

// AdminRefundCommand returns the renter's money and frees the blocked dates.
// Only support staff run it, typically after a dispute.
type AdminRefundCommand struct {
	RentalID string
	Reason   string
	IdemKey  string
}

func (c AdminRefundCommand) Name() string { return adminRefundName }

func (c AdminRefundCommand) IdempotencyKey() string { return c.IdemKey }

func (c AdminRefundCommand) ResultPrototype() any { return &AdminRefundResult{} }

func (c AdminRefundCommand) Authorize(p policies.Principal) error {
	if !p.IsAdmin() {
		return policies.ErrUnauthorized
	}
	return nil
}

type AdminRefundResult struct {
	RentalID  string `json:"rental_id"`
	RefundRef string `json:"refund_ref"`
}

type AdminRefundHandler struct {
	UoWFactory uow.Factory
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Clock      func() time.Time
}

func (h *AdminRefundHandler) Handle(ctx context.Context, cmd AdminRefundCommand) (*AdminRefundResult, error) {
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

	now := h.now()
	var refundRef string
	if r.Settlement == domainrental.SettlementPaid {
		// The rental id doubles as the processor-side dedupe reference, so
		// two racing admins cannot produce two captures' worth of refunds.
		refundRef, err = h.Payments.CreateRefund(ctx, r.PaymentRef, r.Total, r.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", policies.ErrSettlement, err)
		}
		if err := r.MarkRefunded(now); err != nil {
			return nil, err
		}
	} else {
		// Nothing was captured, so there is nothing to send back; the
		// rental is simply cancelled.
		if err := r.CancelByAdmin(adminActor(ctx), now); err != nil {
			return nil, err
		}
	}

	// The refunded range goes back on the market.
	cal, err := unit.Calendars().ByItemID(ctx, r.ItemID)
	if err != nil && !errors.Is(err, domainavailability.ErrCalendarNotFound) {
		return nil, err
	}
	if cal != nil {
		if err := cal.Release(r.ID); err != nil && !errors.Is(err, domainavailability.ErrNotReserved) {
			return nil, err
		}
		if err := unit.Calendars().Save(ctx, cal); err != nil {
			return nil, err
		}
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
	if h.Notifier != nil && refundRef != "" {
		_ = h.Notifier.RentalRefunded(ctx, r.RenterID, r.ID)
	}
	return &AdminRefundResult{RentalID: r.ID, RefundRef: refundRef}, nil
}

func (h *AdminRefundHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func adminActor(ctx context.Context) string {
	if p, ok := policies.PrincipalFromContext(ctx); ok && p.UserID != "" {
		return p.UserID
	}
	return "admin"
}

// ReleasePayoutCommand transfers the owner's share of a completed rental.
type ReleasePayoutCommand struct {
	RentalID string
	IdemKey  string
}

func (c ReleasePayoutCommand) Name() string { return releasePayoutName }

func (c ReleasePayoutCommand) IdempotencyKey() string { return c.IdemKey }

func (c ReleasePayoutCommand) ResultPrototype() any { return &ReleasePayoutResult{} }

func (c ReleasePayoutCommand) Authorize(p policies.Principal) error {
	if !p.IsAdmin() {
		return policies.ErrUnauthorized
	}
	return nil
}

type ReleasePayoutResult struct {
	RentalID    string `json:"rental_id"`
	TransferRef string `json:"transfer_ref"`
	PayoutCents int64  `json:"payout_cents"`
	FeeCents    int64  `json:"fee_cents"`
}

type ReleasePayoutHandler struct {
	UoWFactory uow.Factory
	Payments   policies.PaymentsPort
	Reconciler settlement.Reconciler
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *ReleasePayoutHandler) Handle(ctx context.Context, cmd ReleasePayoutCommand) (*ReleasePayoutResult, error) {
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

	stmt, err := h.Reconciler.StatementFor(r)
	if err != nil {
		return nil, err
	}
	transferRef, err := h.Payments.CreateTransfer(ctx, r.OwnerID, stmt.OwnerPayout, r.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", policies.ErrSettlement, err)
	}
	if err := r.MarkPaidOut(h.now()); err != nil {
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
	return &ReleasePayoutResult{
		RentalID:    r.ID,
		TransferRef: transferRef,
		PayoutCents: stmt.OwnerPayout.Cents,
		FeeCents:    stmt.PlatformFee.Cents,
	}, nil
}

func (h *ReleasePayoutHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}
