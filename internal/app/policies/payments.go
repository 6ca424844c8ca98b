package policies

import (
	"context"
	"errors"

	"gearbook/internal/domain/shared/money"
)

var (
	// ErrPaymentProcessor wraps any upstream processor failure while
	// collecting a charge.
	ErrPaymentProcessor = errors.New("payments: processor request failed")
	// ErrSettlement wraps processor failures while moving money out
	// (refunds and owner payouts).
	ErrSettlement = errors.New("payments: settlement request failed")
)

// CheckoutSession is an open hosted-checkout the renter completes off-platform.
type CheckoutSession struct {
	ID          string
	RedirectURL string
	ExpiresAt   int64
}

// PaymentsPort is the outbound port to the payment processor. Calls go over
// the network; handlers must not hold a transaction open across them.
// Refunds and transfers carry a caller-chosen reference the processor
// deduplicates on, so retried or racing requests move money at most once.
type PaymentsPort interface {
	CreateCheckoutSession(ctx context.Context, rentalID string, amount money.Money) (CheckoutSession, error)
	CreateRefund(ctx context.Context, paymentRef string, amount money.Money, reference string) (string, error)
	CreateTransfer(ctx context.Context, ownerID string, amount money.Money, reference string) (string, error)
}
