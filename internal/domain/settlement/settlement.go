package settlement

import (
	"errors"

	"gearbook/internal/domain/rental"
	"gearbook/internal/domain/shared/money"
)

var ErrNotPayable = errors.New("settlement: rental is not in a payable state")

// DefaultFeeRateBps is the platform's cut of the rental total, in basis
// points.
const DefaultFeeRateBps = 1500

// Statement splits one paid rental's total between the owner and the
// platform. PlatformFee plus OwnerPayout always equals the charged total,
// to the cent; the fee absorbs truncation, the payout gets the remainder.
type Statement struct {
	RentalID    string
	Total       money.Money
	PlatformFee money.Money
	OwnerPayout money.Money
}

// Reconciler produces settlement statements for paid rentals.
type Reconciler struct {
	FeeRateBps int64
}

func NewReconciler(feeRateBps int64) Reconciler {
	if feeRateBps <= 0 {
		feeRateBps = DefaultFeeRateBps
	}
	return Reconciler{FeeRateBps: feeRateBps}
}

// StatementFor computes the split for a rental that has been paid.
func (s Reconciler) StatementFor(r *rental.Rental) (Statement, error) {
	switch r.Settlement {
	case rental.SettlementPaid, rental.SettlementPaidOut:
	default:
		return Statement{}, ErrNotPayable
	}
	fee := r.Total.Portion(s.FeeRateBps)
	payout, err := r.Total.Sub(fee)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		RentalID:    r.ID,
		Total:       r.Total,
		PlatformFee: fee,
		OwnerPayout: payout,
	}, nil
}

// Summary aggregates an owner's settled and pending money across rentals.
type Summary struct {
	OwnerID       string
	PaidOutTotal  money.Money
	PendingPayout money.Money
	PlatformFees  money.Money
	RentalCount   int
}

// Summarize folds statements for the owner's rentals. Rentals that are not
// yet paid, or were refunded, contribute nothing.
func (s Reconciler) Summarize(ownerID string, rentals []*rental.Rental) (Summary, error) {
	sum := Summary{
		OwnerID:       ownerID,
		PaidOutTotal:  money.USD(0),
		PendingPayout: money.USD(0),
		PlatformFees:  money.USD(0),
	}
	for _, r := range rentals {
		stmt, err := s.StatementFor(r)
		if err != nil {
			if errors.Is(err, ErrNotPayable) {
				continue
			}
			return Summary{}, err
		}
		sum.RentalCount++
		if sum.PlatformFees, err = sum.PlatformFees.Add(stmt.PlatformFee); err != nil {
			return Summary{}, err
		}
		if r.Settlement == rental.SettlementPaidOut {
			if sum.PaidOutTotal, err = sum.PaidOutTotal.Add(stmt.OwnerPayout); err != nil {
				return Summary{}, err
			}
			continue
		}
		if sum.PendingPayout, err = sum.PendingPayout.Add(stmt.OwnerPayout); err != nil {
			return Summary{}, err
		}
	}
	return sum, nil
}
