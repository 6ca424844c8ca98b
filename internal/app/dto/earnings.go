package dto

import "gearbook/internal/domain/settlement"

type EarningsView struct {
	OwnerID       string    `json:"owner_id"`
	PaidOutTotal  MoneyView `json:"paid_out_total"`
	PendingPayout MoneyView `json:"pending_payout"`
	PlatformFees  MoneyView `json:"platform_fees"`
	RentalCount   int       `json:"rental_count"`
}

func NewEarningsView(s settlement.Summary) EarningsView {
	return EarningsView{
		OwnerID:       s.OwnerID,
		PaidOutTotal:  MoneyView{Cents: s.PaidOutTotal.Cents, Currency: s.PaidOutTotal.Currency},
		PendingPayout: MoneyView{Cents: s.PendingPayout.Cents, Currency: s.PendingPayout.Currency},
		PlatformFees:  MoneyView{Cents: s.PlatformFees.Cents, Currency: s.PlatformFees.Currency},
		RentalCount:   s.RentalCount,
	}
}
