package rental

import (
	"context"
	"errors"
	"time"

	"gearbook/internal/domain/pricing"
	"gearbook/internal/domain/shared/daterange"
	"gearbook/internal/domain/shared/events"
	"gearbook/internal/domain/shared/money"
)

var (
	ErrNotFound             = errors.New("rental: rental not found")
	ErrInvalidTransition    = errors.New("rental: transition not allowed from current status")
	ErrIncompleteInspection = errors.New("rental: inspection is incomplete")
	ErrOwnRental            = errors.New("rental: owners cannot rent their own items")
)

// Status is the rental lifecycle state. Transitions are enforced by the
// aggregate; no other layer mutates status directly.
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusApproved        Status = "APPROVED"
	StatusActive          Status = "ACTIVE"
	StatusCompleted       Status = "COMPLETED"
	StatusCancelled       Status = "CANCELLED"
)

// SettlementState tracks money independently of the lifecycle: a cancelled
// rental can still be PAID until the refund lands.
type SettlementState string

const (
	SettlementUnpaid   SettlementState = "UNPAID"
	SettlementPaid     SettlementState = "PAID"
	SettlementPaidOut  SettlementState = "PAID_OUT"
	SettlementRefunded SettlementState = "REFUNDED"
)

// Rental is the aggregate root for one renter/item engagement, from request
// through settlement.
type Rental struct {
	events.EventRecorder

	ID       string
	ItemID   string
	// ItemTitle is snapshotted at request time so rental history stays
	// readable after the item is edited or deleted.
	ItemTitle string
	OwnerID   string
	RenterID  string

	Period      daterange.Range
	BillingMode pricing.BillingMode
	Protection  pricing.ProtectionTier

	Subtotal      money.Money
	ServiceFee    money.Money
	ProtectionFee money.Money
	Total         money.Money

	Status     Status
	Settlement SettlementState

	PaymentSessionID string
	PaymentRef       string

	Inspections map[Stage]*Inspection

	RequestedAt time.Time
	DecidedAt   time.Time
	PaidAt      time.Time
	ActivatedAt time.Time
	CompletedAt time.Time
	CancelledAt time.Time

	Version int64
}

// Request opens a new rental. Instant-book items skip the owner decision and
// go straight to awaiting payment.
func Request(id, itemID, itemTitle, ownerID, renterID string, period daterange.Range, quote pricing.Quote, tier pricing.ProtectionTier, instantBook bool, now time.Time) (*Rental, error) {
	if renterID == ownerID {
		return nil, ErrOwnRental
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	r := &Rental{
		ID:            id,
		ItemID:        itemID,
		ItemTitle:     itemTitle,
		OwnerID:       ownerID,
		RenterID:      renterID,
		Period:        period,
		BillingMode:   quote.Mode,
		Protection:    tier,
		Subtotal:      quote.Subtotal,
		ServiceFee:    quote.ServiceFee,
		ProtectionFee: quote.ProtectionFee,
		Total:         quote.Total,
		Status:        StatusPending,
		Settlement:    SettlementUnpaid,
		Inspections:   map[Stage]*Inspection{},
		RequestedAt:   now,
	}
	if instantBook {
		r.Status = StatusAwaitingPayment
		r.DecidedAt = now
	}
	r.Record(RequestedEvent{RentalID: id, ItemID: itemID, RenterID: renterID, At: now})
	return r, nil
}

// Approve moves a pending request to awaiting payment.
func (r *Rental) Approve(now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	r.Status = StatusAwaitingPayment
	r.DecidedAt = now
	r.Record(ApprovedEvent{RentalID: r.ID, OwnerID: r.OwnerID, At: now})
	return nil
}

// Reject declines a pending request. Nothing has been charged yet.
func (r *Rental) Reject(now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	r.Status = StatusCancelled
	r.DecidedAt = now
	r.CancelledAt = now
	r.Record(RejectedEvent{RentalID: r.ID, OwnerID: r.OwnerID, At: now})
	return nil
}

// Cancel lets the renter withdraw before money moves. Paid rentals go
// through the refund path instead.
func (r *Rental) Cancel(now time.Time) error {
	switch r.Status {
	case StatusPending, StatusAwaitingPayment:
	default:
		return ErrInvalidTransition
	}
	if r.Settlement != SettlementUnpaid {
		return ErrInvalidTransition
	}
	r.Status = StatusCancelled
	r.CancelledAt = now
	r.Record(CancelledEvent{RentalID: r.ID, By: r.RenterID, At: now})
	return nil
}

// AttachPaymentSession records the checkout session opened with the
// processor. Only one session may be live at a time; retried commands with
// the same session id are accepted.
func (r *Rental) AttachPaymentSession(sessionID string) error {
	if r.Status != StatusAwaitingPayment {
		return ErrInvalidTransition
	}
	if r.PaymentSessionID != "" && r.PaymentSessionID != sessionID {
		return ErrInvalidTransition
	}
	r.PaymentSessionID = sessionID
	return nil
}

// ConfirmPayment marks the rental paid and approved. Confirming an already
// confirmed rental with the same payment reference is a no-op, so webhook
// redeliveries do not double-reserve or double-count.
func (r *Rental) ConfirmPayment(paymentRef string, now time.Time) error {
	if r.Status == StatusApproved && r.PaymentRef == paymentRef {
		return nil
	}
	if r.Status != StatusAwaitingPayment {
		return ErrInvalidTransition
	}
	r.Status = StatusApproved
	r.Settlement = SettlementPaid
	r.PaymentRef = paymentRef
	r.PaidAt = now
	r.Record(PaidEvent{RentalID: r.ID, PaymentRef: paymentRef, Total: r.Total, At: now})
	return nil
}

// RecordInspection stores a completed inspection for its stage. A pickup
// inspection activates the rental; a return inspection completes it.
func (r *Rental) RecordInspection(insp *Inspection, now time.Time) error {
	if err := insp.Validate(); err != nil {
		return err
	}
	switch insp.Stage {
	case StagePickup:
		if r.Status != StatusApproved {
			return ErrInvalidTransition
		}
		r.Inspections[StagePickup] = insp
		r.Status = StatusActive
		r.ActivatedAt = now
		r.Record(ActivatedEvent{RentalID: r.ID, At: now})
	case StageReturn:
		if r.Status != StatusActive {
			return ErrInvalidTransition
		}
		r.Inspections[StageReturn] = insp
		r.Status = StatusCompleted
		r.CompletedAt = now
		r.Record(CompletedEvent{RentalID: r.ID, At: now})
	default:
		return ErrIncompleteInspection
	}
	return nil
}

// MarkPaidOut records that the owner payout left the platform account.
func (r *Rental) MarkPaidOut(now time.Time) error {
	if r.Status != StatusCompleted || r.Settlement != SettlementPaid {
		return ErrInvalidTransition
	}
	r.Settlement = SettlementPaidOut
	r.Record(PaidOutEvent{RentalID: r.ID, OwnerID: r.OwnerID, At: now})
	return nil
}

// MarkRefunded cancels a paid rental and records the refund. Funds that
// already went to the owner cannot be clawed back here.
func (r *Rental) MarkRefunded(now time.Time) error {
	if r.Settlement != SettlementPaid {
		return ErrInvalidTransition
	}
	if r.Status == StatusCompleted {
		return ErrInvalidTransition
	}
	r.Settlement = SettlementRefunded
	r.Status = StatusCancelled
	r.CancelledAt = now
	r.Record(RefundedEvent{RentalID: r.ID, Total: r.Total, At: now})
	return nil
}

// CancelByAdmin force-cancels a rental that has not collected money, the
// admin counterpart of a refund when there is nothing to send back. Paid
// rentals go through MarkRefunded so the money trail stays intact.
func (r *Rental) CancelByAdmin(adminID string, now time.Time) error {
	if r.Status == StatusCompleted || r.Status == StatusCancelled {
		return ErrInvalidTransition
	}
	if r.Settlement != SettlementUnpaid {
		return ErrInvalidTransition
	}
	r.Status = StatusCancelled
	r.CancelledAt = now
	r.Record(CancelledEvent{RentalID: r.ID, By: adminID, At: now})
	return nil
}

// HoldsCalendar reports whether the rental currently owns its calendar days.
// Days are reserved at payment confirmation and released when the rental is
// refunded or otherwise leaves the paid path.
func (r *Rental) HoldsCalendar() bool {
	switch r.Settlement {
	case SettlementPaid, SettlementPaidOut:
		return true
	default:
		return false
	}
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Rental, error)
	Save(ctx context.Context, rental *Rental) error
	ListByRenter(ctx context.Context, renterID string) ([]*Rental, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Rental, error)
	ListByItem(ctx context.Context, itemID string) ([]*Rental, error)
}
