package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"gearbook/internal/app/policies"
	"gearbook/internal/domain/shared/money"
)

// FakeProcessor stands in for the real processor in memory mode and tests.
// It succeeds unless Fail is set, and records every call.
type FakeProcessor struct {
	mu        sync.Mutex
	Fail      error
	Sessions  []string
	Refunds   []string
	Transfers []string
	// RefundRequests records the dedupe reference of each refund call.
	RefundRequests []string
}

func (f *FakeProcessor) CreateCheckoutSession(ctx context.Context, rentalID string, amount money.Money) (policies.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return policies.CheckoutSession{}, f.Fail
	}
	id := "cs_" + uuid.NewString()
	f.Sessions = append(f.Sessions, id)
	return policies.CheckoutSession{
		ID:          id,
		RedirectURL: "https://pay.example.test/" + id,
	}, nil
}

func (f *FakeProcessor) CreateRefund(ctx context.Context, paymentRef string, amount money.Money, reference string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return "", f.Fail
	}
	ref := "re_" + uuid.NewString()
	f.Refunds = append(f.Refunds, ref)
	f.RefundRequests = append(f.RefundRequests, reference)
	return ref, nil
}

func (f *FakeProcessor) CreateTransfer(ctx context.Context, ownerID string, amount money.Money, reference string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return "", f.Fail
	}
	ref := "tr_" + uuid.NewString()
	f.Transfers = append(f.Transfers, ref)
	return ref, nil
}

var _ policies.PaymentsPort = (*FakeProcessor)(nil)
