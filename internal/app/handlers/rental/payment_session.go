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
)

const startPaymentSessionName = "rental.payment.start"

// StartPaymentSessionCommand opens a hosted checkout for an approved request.
// Retries reuse the session already attached to the rental.
type StartPaymentSessionCommand struct {
	RentalID string
	RenterID string
	IdemKey  string
}

func (c StartPaymentSessionCommand) Name() string { return startPaymentSessionName }

func (c StartPaymentSessionCommand) IdempotencyKey() string { return c.IdemKey }

func (c StartPaymentSessionCommand) ResultPrototype() any { return &StartPaymentSessionResult{} }

func (c StartPaymentSessionCommand) Authorize(p policies.Principal) error {
	if !p.Is(c.RenterID) {
		return policies.ErrUnauthorized
	}
	return nil
}

type StartPaymentSessionResult struct {
	RentalID    string `json:"rental_id"`
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type StartPaymentSessionHandler struct {
	UoWFactory uow.Factory
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *StartPaymentSessionHandler) Handle(ctx context.Context, cmd StartPaymentSessionCommand) (*StartPaymentSessionResult, error) {
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
	if r.PaymentSessionID != "" {
		// A session is already open; hand back the same one instead of
		// charging the renter twice.
		return &StartPaymentSessionResult{RentalID: r.ID, SessionID: r.PaymentSessionID}, nil
	}

	// The dates may have been taken between approval and checkout.
	cal, err := unit.Calendars().ByItemID(ctx, r.ItemID)
	if err != nil && !errors.Is(err, domainavailability.ErrCalendarNotFound) {
		return nil, err
	}
	if cal != nil && !cal.IsAvailable(r.Period, r.ID) {
		return nil, domainavailability.ErrDateConflict
	}

	session, err := h.Payments.CreateCheckoutSession(ctx, r.ID, r.Total)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", policies.ErrPaymentProcessor, err)
	}
	if err := r.AttachPaymentSession(session.ID); err != nil {
		return nil, err
	}
	if err := unit.Rentals().Save(ctx, r); err != nil {
		return nil, err
	}
	if err := scope.Commit(ctx); err != nil {
		return nil, err
	}
	return &StartPaymentSessionResult{
		RentalID:    r.ID,
		SessionID:   session.ID,
		RedirectURL: session.RedirectURL,
	}, nil
}

const confirmPaymentName = "rental.payment.confirm"

// ConfirmPaymentCommand finalizes a paid checkout. It arrives from the
// processor webhook or the broker feed, never from the renter directly, so
// it carries no principal check.
type ConfirmPaymentCommand struct {
	RentalID   string
	SessionID  string
	PaymentRef string
}

func (c ConfirmPaymentCommand) Name() string { return confirmPaymentName }

type ConfirmPaymentResult struct {
	RentalID string `json:"rental_id"`
	Status   string `json:"status"`
}

type ConfirmPaymentHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Clock      func() time.Time
}

// Handle marks the rental paid and reserves its calendar days in the same
// transaction. Redelivered confirmations hit the aggregate's idempotent
// path and the by-reference reservation, so nothing is counted twice.
func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
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
	if cmd.SessionID != "" && r.PaymentSessionID != "" && r.PaymentSessionID != cmd.SessionID {
		return nil, ErrSessionMismatch
	}
	now := h.now()
	if err := r.ConfirmPayment(cmd.PaymentRef, now); err != nil {
		return nil, err
	}

	cal, err := unit.Calendars().ByItemID(ctx, r.ItemID)
	if err != nil {
		if !errors.Is(err, domainavailability.ErrCalendarNotFound) {
			return nil, err
		}
		cal = domainavailability.NewCalendar(r.ItemID)
	}
	if err := cal.Reserve(r.Period, r.ID); err != nil {
		return nil, err
	}
	if err := unit.Calendars().Save(ctx, cal); err != nil {
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
		_ = h.Notifier.RentalPaid(ctx, r.OwnerID, r.ID)
	}
	return &ConfirmPaymentResult{RentalID: r.ID, Status: string(r.Status)}, nil
}

func (h *ConfirmPaymentHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

var ErrSessionMismatch = errors.New("rental: payment session does not match")
