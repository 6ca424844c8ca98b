package settlement

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gearbook/internal/domain/rental"
	"gearbook/internal/domain/shared/money"
)

func paidRental(id string, totalCents int64, state rental.SettlementState) *rental.Rental {
	return &rental.Rental{
		ID:         id,
		OwnerID:    "owner-1",
		Total:      money.USD(totalCents),
		Status:     rental.StatusCompleted,
		Settlement: state,
	}
}

func TestStatementFor(t *testing.T) {
	rec := NewReconciler(DefaultFeeRateBps)

	t.Run("splits total between fee and payout", func(t *testing.T) {
		stmt, err := rec.StatementFor(paidRental("r1", 31500, rental.SettlementPaid))
		require.NoError(t, err)
		require.Equal(t, money.USD(4725), stmt.PlatformFee)
		require.Equal(t, money.USD(26775), stmt.OwnerPayout)
	})

	t.Run("fee plus payout equals total to the cent", func(t *testing.T) {
		for _, cents := range []int64{1, 99, 101, 12345, 31500, 99999, 1000001} {
			stmt, err := rec.StatementFor(paidRental("r", cents, rental.SettlementPaid))
			require.NoError(t, err)
			require.Equal(t, cents, stmt.PlatformFee.Cents+stmt.OwnerPayout.Cents, "total %d", cents)
			require.False(t, stmt.OwnerPayout.IsNegative())
		}
	})

	t.Run("unpaid rental is not payable", func(t *testing.T) {
		_, err := rec.StatementFor(paidRental("r", 1000, rental.SettlementUnpaid))
		require.ErrorIs(t, err, ErrNotPayable)
	})

	t.Run("refunded rental is not payable", func(t *testing.T) {
		_, err := rec.StatementFor(paidRental("r", 1000, rental.SettlementRefunded))
		require.ErrorIs(t, err, ErrNotPayable)
	})
}

func TestSummarize(t *testing.T) {
	rec := NewReconciler(DefaultFeeRateBps)
	rentals := []*rental.Rental{
		paidRental("r1", 10000, rental.SettlementPaidOut),
		paidRental("r2", 20000, rental.SettlementPaid),
		paidRental("r3", 5000, rental.SettlementUnpaid),
		paidRental("r4", 7500, rental.SettlementRefunded),
	}

	sum, err := rec.Summarize("owner-1", rentals)
	require.NoError(t, err)
	require.Equal(t, 2, sum.RentalCount)
	require.Equal(t, money.USD(8500), sum.PaidOutTotal)   // 10000 minus 15%
	require.Equal(t, money.USD(17000), sum.PendingPayout) // 20000 minus 15%
	require.Equal(t, money.USD(4500), sum.PlatformFees)
}

func TestSummarizeEmpty(t *testing.T) {
	rec := NewReconciler(0)
	require.Equal(t, int64(DefaultFeeRateBps), rec.FeeRateBps)

	sum, err := rec.Summarize("owner-1", nil)
	require.NoError(t, err)
	require.Equal(t, 0, sum.RentalCount)
	require.True(t, sum.PendingPayout.IsZero())
}
