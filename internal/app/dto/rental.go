package dto

import (
	"time"

	"gearbook/internal/domain/rental"
)

// MoneyView renders an amount for API responses.
type MoneyView struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

type RentalView struct {
	ID               string    `json:"id"`
	ItemID           string    `json:"item_id"`
	ItemTitle        string    `json:"item_title"`
	OwnerID          string    `json:"owner_id"`
	RenterID         string    `json:"renter_id"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	BillingMode      string    `json:"billing_mode"`
	Protection       string    `json:"protection"`
	Status           string    `json:"status"`
	Settlement       string    `json:"settlement"`
	Subtotal         MoneyView `json:"subtotal"`
	ServiceFee       MoneyView `json:"service_fee"`
	ProtectionFee    MoneyView `json:"protection_fee"`
	Total            MoneyView `json:"total"`
	PaymentSessionID string    `json:"payment_session_id,omitempty"`
	RequestedAt      time.Time `json:"requested_at"`
}

func NewRentalView(r *rental.Rental) RentalView {
	return RentalView{
		ID:               r.ID,
		ItemID:           r.ItemID,
		ItemTitle:        r.ItemTitle,
		OwnerID:          r.OwnerID,
		RenterID:         r.RenterID,
		Start:            r.Period.Start,
		End:              r.Period.End,
		BillingMode:      string(r.BillingMode),
		Protection:       string(r.Protection),
		Status:           string(r.Status),
		Settlement:       string(r.Settlement),
		Subtotal:         MoneyView{Cents: r.Subtotal.Cents, Currency: r.Subtotal.Currency},
		ServiceFee:       MoneyView{Cents: r.ServiceFee.Cents, Currency: r.ServiceFee.Currency},
		ProtectionFee:    MoneyView{Cents: r.ProtectionFee.Cents, Currency: r.ProtectionFee.Currency},
		Total:            MoneyView{Cents: r.Total.Cents, Currency: r.Total.Currency},
		PaymentSessionID: r.PaymentSessionID,
		RequestedAt:      r.RequestedAt,
	}
}

func NewRentalViews(rs []*rental.Rental) []RentalView {
	out := make([]RentalView, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewRentalView(r))
	}
	return out
}
