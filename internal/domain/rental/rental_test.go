package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gearbook/internal/domain/pricing"
	"gearbook/internal/domain/shared/daterange"
	"gearbook/internal/domain/shared/money"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testQuote() pricing.Quote {
	return pricing.Quote{
		Mode:          pricing.BillDaily,
		Nights:        2,
		Subtotal:      money.USD(30000),
		ServiceFee:    money.USD(1500),
		ProtectionFee: money.USD(0),
		Total:         money.USD(31500),
	}
}

func newRental(t *testing.T, instantBook bool) *Rental {
	t.Helper()
	period, err := daterange.New(
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	r, err := Request("rental-1", "item-1", "Sony A7 IV", "owner-1", "renter-1", period, testQuote(), pricing.TierNone, instantBook, testNow)
	require.NoError(t, err)
	return r
}

func validInspection(stage Stage) *Inspection {
	return &Inspection{
		Stage:       stage,
		PhotoKeys:   []string{"inspections/rental-1/front.jpg"},
		Waiver:      WaiverSignature{SignedBy: "renter-1", SignedAt: testNow},
		SubmittedBy: "renter-1",
		SubmittedAt: testNow,
	}
}

func TestRequest(t *testing.T) {
	t.Run("pending by default", func(t *testing.T) {
		r := newRental(t, false)
		require.Equal(t, StatusPending, r.Status)
		require.Equal(t, SettlementUnpaid, r.Settlement)
		require.Len(t, r.PendingEvents(), 1)
	})

	t.Run("item title is snapshotted", func(t *testing.T) {
		r := newRental(t, false)
		require.Equal(t, "Sony A7 IV", r.ItemTitle)
	})

	t.Run("instant book skips the decision", func(t *testing.T) {
		r := newRental(t, true)
		require.Equal(t, StatusAwaitingPayment, r.Status)
		require.Equal(t, testNow, r.DecidedAt)
	})

	t.Run("own item rejected", func(t *testing.T) {
		period, err := daterange.New(
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		_, err = Request("r", "i", "Item", "owner-1", "owner-1", period, testQuote(), pricing.TierNone, false, testNow)
		require.ErrorIs(t, err, ErrOwnRental)
	})
}

func TestApproveAndReject(t *testing.T) {
	r := newRental(t, false)
	require.NoError(t, r.Approve(testNow))
	require.Equal(t, StatusAwaitingPayment, r.Status)
	require.ErrorIs(t, r.Approve(testNow), ErrInvalidTransition)
	require.ErrorIs(t, r.Reject(testNow), ErrInvalidTransition)

	r2 := newRental(t, false)
	require.NoError(t, r2.Reject(testNow))
	require.Equal(t, StatusCancelled, r2.Status)
}

func TestCancel(t *testing.T) {
	t.Run("pending cancels", func(t *testing.T) {
		r := newRental(t, false)
		require.NoError(t, r.Cancel(testNow))
		require.Equal(t, StatusCancelled, r.Status)
	})

	t.Run("awaiting payment cancels while unpaid", func(t *testing.T) {
		r := newRental(t, true)
		require.NoError(t, r.Cancel(testNow))
	})

	t.Run("paid rental must refund instead", func(t *testing.T) {
		r := newRental(t, true)
		require.NoError(t, r.ConfirmPayment("pay-1", testNow))
		require.ErrorIs(t, r.Cancel(testNow), ErrInvalidTransition)
	})
}

func TestAttachPaymentSession(t *testing.T) {
	r := newRental(t, true)
	require.NoError(t, r.AttachPaymentSession("cs-1"))
	// The same session may be re-attached by a retried command.
	require.NoError(t, r.AttachPaymentSession("cs-1"))
	require.ErrorIs(t, r.AttachPaymentSession("cs-2"), ErrInvalidTransition)

	pending := newRental(t, false)
	require.ErrorIs(t, pending.AttachPaymentSession("cs-1"), ErrInvalidTransition)
}

func TestConfirmPayment(t *testing.T) {
	r := newRental(t, true)
	require.NoError(t, r.ConfirmPayment("pay-1", testNow))
	require.Equal(t, StatusApproved, r.Status)
	require.Equal(t, SettlementPaid, r.Settlement)
	require.Equal(t, "pay-1", r.PaymentRef)

	t.Run("same reference is a no-op", func(t *testing.T) {
		r.ClearEvents()
		require.NoError(t, r.ConfirmPayment("pay-1", testNow.Add(time.Minute)))
		require.Empty(t, r.PendingEvents())
		require.Equal(t, testNow, r.PaidAt)
	})

	t.Run("different reference fails", func(t *testing.T) {
		require.ErrorIs(t, r.ConfirmPayment("pay-2", testNow), ErrInvalidTransition)
	})

	t.Run("pending rental cannot be paid", func(t *testing.T) {
		p := newRental(t, false)
		require.ErrorIs(t, p.ConfirmPayment("pay-1", testNow), ErrInvalidTransition)
	})
}

func TestInspectionGate(t *testing.T) {
	paid := func(t *testing.T) *Rental {
		r := newRental(t, true)
		require.NoError(t, r.ConfirmPayment("pay-1", testNow))
		return r
	}

	t.Run("pickup activates", func(t *testing.T) {
		r := paid(t)
		require.NoError(t, r.RecordInspection(validInspection(StagePickup), testNow))
		require.Equal(t, StatusActive, r.Status)
	})

	t.Run("return completes", func(t *testing.T) {
		r := paid(t)
		require.NoError(t, r.RecordInspection(validInspection(StagePickup), testNow))
		require.NoError(t, r.RecordInspection(validInspection(StageReturn), testNow))
		require.Equal(t, StatusCompleted, r.Status)
	})

	t.Run("return report needs no waiver", func(t *testing.T) {
		r := paid(t)
		require.NoError(t, r.RecordInspection(validInspection(StagePickup), testNow))
		ret := validInspection(StageReturn)
		ret.Waiver = WaiverSignature{}
		ret.Notes = "returned in good shape"
		require.NoError(t, r.RecordInspection(ret, testNow))
		require.Equal(t, StatusCompleted, r.Status)
	})

	t.Run("return before pickup fails", func(t *testing.T) {
		r := paid(t)
		require.ErrorIs(t, r.RecordInspection(validInspection(StageReturn), testNow), ErrInvalidTransition)
	})

	t.Run("zero photos fails", func(t *testing.T) {
		r := paid(t)
		insp := validInspection(StagePickup)
		insp.PhotoKeys = nil
		require.ErrorIs(t, r.RecordInspection(insp, testNow), ErrIncompleteInspection)
		require.Equal(t, StatusApproved, r.Status)
	})

	t.Run("unsigned waiver fails at pickup", func(t *testing.T) {
		r := paid(t)
		insp := validInspection(StagePickup)
		insp.Waiver = WaiverSignature{}
		require.ErrorIs(t, r.RecordInspection(insp, testNow), ErrIncompleteInspection)
	})

	t.Run("pickup before payment fails", func(t *testing.T) {
		r := newRental(t, true)
		require.ErrorIs(t, r.RecordInspection(validInspection(StagePickup), testNow), ErrInvalidTransition)
	})
}

func TestMarkPaidOut(t *testing.T) {
	r := newRental(t, true)
	require.NoError(t, r.ConfirmPayment("pay-1", testNow))

	// Not completed yet.
	require.ErrorIs(t, r.MarkPaidOut(testNow), ErrInvalidTransition)

	require.NoError(t, r.RecordInspection(validInspection(StagePickup), testNow))
	require.NoError(t, r.RecordInspection(validInspection(StageReturn), testNow))
	require.NoError(t, r.MarkPaidOut(testNow))
	require.Equal(t, SettlementPaidOut, r.Settlement)

	// A second payout attempt fails.
	require.ErrorIs(t, r.MarkPaidOut(testNow), ErrInvalidTransition)
}

func TestMarkRefunded(t *testing.T) {
	t.Run("paid rental refunds", func(t *testing.T) {
		r := newRental(t, true)
		require.NoError(t, r.ConfirmPayment("pay-1", testNow))
		require.NoError(t, r.MarkRefunded(testNow))
		require.Equal(t, StatusCancelled, r.Status)
		require.Equal(t, SettlementRefunded, r.Settlement)
		require.False(t, r.HoldsCalendar())
	})

	t.Run("unpaid rental cannot refund", func(t *testing.T) {
		r := newRental(t, false)
		require.ErrorIs(t, r.MarkRefunded(testNow), ErrInvalidTransition)
	})

	t.Run("completed rental cannot refund", func(t *testing.T) {
		r := newRental(t, true)
		require.NoError(t, r.ConfirmPayment("pay-1", testNow))
		require.NoError(t, r.RecordInspection(validInspection(StagePickup), testNow))
		require.NoError(t, r.RecordInspection(validInspection(StageReturn), testNow))
		require.ErrorIs(t, r.MarkRefunded(testNow), ErrInvalidTransition)
	})

	t.Run("paid out rental cannot refund", func(t *testing.T) {
		r := newRental(t, true)
		require.NoError(t, r.ConfirmPayment("pay-1", testNow))
		require.NoError(t, r.RecordInspection(validInspection(StagePickup), testNow))
		require.NoError(t, r.RecordInspection(validInspection(StageReturn), testNow))
		require.NoError(t, r.MarkPaidOut(testNow))
		require.ErrorIs(t, r.MarkRefunded(testNow), ErrInvalidTransition)
	})
}

func TestCancelByAdmin(t *testing.T) {
	t.Run("pending rental cancels", func(t *testing.T) {
		r := newRental(t, false)
		require.NoError(t, r.CancelByAdmin("admin-1", testNow))
		require.Equal(t, StatusCancelled, r.Status)
		require.Equal(t, SettlementUnpaid, r.Settlement)
	})

	t.Run("awaiting payment cancels while unpaid", func(t *testing.T) {
		r := newRental(t, true)
		require.NoError(t, r.CancelByAdmin("admin-1", testNow))
		require.Equal(t, StatusCancelled, r.Status)
	})

	t.Run("paid rental must use the refund path", func(t *testing.T) {
		r := newRental(t, true)
		require.NoError(t, r.ConfirmPayment("pay-1", testNow))
		require.ErrorIs(t, r.CancelByAdmin("admin-1", testNow), ErrInvalidTransition)
	})

	t.Run("cancelled rental stays put", func(t *testing.T) {
		r := newRental(t, false)
		require.NoError(t, r.Cancel(testNow))
		require.ErrorIs(t, r.CancelByAdmin("admin-1", testNow), ErrInvalidTransition)
	})
}

func TestHoldsCalendar(t *testing.T) {
	r := newRental(t, true)
	require.False(t, r.HoldsCalendar())
	require.NoError(t, r.ConfirmPayment("pay-1", testNow))
	require.True(t, r.HoldsCalendar())
}
