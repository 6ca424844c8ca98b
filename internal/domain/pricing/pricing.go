package pricing

import (
	"errors"
	"math"

	"gearbook/internal/domain/shared/daterange"
	"gearbook/internal/domain/shared/money"
)

var (
	ErrNoRate          = errors.New("pricing: item has no rate for the requested billing mode")
	ErrBelowMinimum    = errors.New("pricing: duration below the item's minimum")
	ErrUnknownTier     = errors.New("pricing: unknown protection tier")
	ErrCurrencyUnknown = errors.New("pricing: rate currency is not set")
)

// BillingMode selects how the rental duration is converted into a charge.
type BillingMode string

const (
	BillDaily  BillingMode = "DAILY"
	BillHourly BillingMode = "HOURLY"
)

// ProtectionTier is the damage protection plan the renter picked at checkout.
type ProtectionTier string

const (
	TierNone     ProtectionTier = "none"
	TierBasic    ProtectionTier = "basic"
	TierStandard ProtectionTier = "standard"
	TierPremier  ProtectionTier = "premier"
)

// protectionFees holds flat per-rental fees in cents.
var protectionFees = map[ProtectionTier]int64{
	TierNone:     0,
	TierBasic:    0,
	TierStandard: 2000,
	TierPremier:  5900,
}

// ProtectionFee returns the flat fee for a tier.
func ProtectionFee(tier ProtectionTier) (money.Money, error) {
	cents, ok := protectionFees[tier]
	if !ok {
		return money.Money{}, ErrUnknownTier
	}
	return money.USD(cents), nil
}

// RateCard is the owner-configured price sheet for an item.
type RateCard struct {
	Currency         string
	DailyRateCents   int64
	WeekendRateCents int64 // optional, applies to Friday and Saturday nights
	HourlyRateCents  int64 // optional, enables hourly billing
	MinHours         float64
}

// Quote is the renter-facing price breakdown. Total is always
// Subtotal + ServiceFee + ProtectionFee in the rate card currency.
type Quote struct {
	Mode          BillingMode
	Nights        int
	Hours         float64
	Subtotal      money.Money
	ServiceFee    money.Money
	ProtectionFee money.Money
	Total         money.Money
}

// Calculator produces quotes. ServiceFeeBps is the renter-side service fee
// in basis points of the subtotal.
type Calculator struct {
	ServiceFeeBps int64
}

const DefaultServiceFeeBps = 500

func NewCalculator(serviceFeeBps int64) Calculator {
	if serviceFeeBps <= 0 {
		serviceFeeBps = DefaultServiceFeeBps
	}
	return Calculator{ServiceFeeBps: serviceFeeBps}
}

// QuoteFor prices a period against a rate card. Daily billing charges per
// night, substituting the weekend rate for Friday and Saturday nights when
// one is configured. Hourly billing charges the exact fractional duration,
// truncated to whole cents, never rounded up to a day.
func (c Calculator) QuoteFor(card RateCard, period daterange.Range, mode BillingMode, tier ProtectionTier) (Quote, error) {
	if card.Currency == "" {
		return Quote{}, ErrCurrencyUnknown
	}
	if err := period.Validate(); err != nil {
		return Quote{}, err
	}

	var subtotal money.Money
	q := Quote{Mode: mode}

	switch mode {
	case BillDaily:
		if card.DailyRateCents <= 0 {
			return Quote{}, ErrNoRate
		}
		nights := period.Nights()
		if nights < 1 {
			return Quote{}, ErrBelowMinimum
		}
		var cents int64
		night := daterange.DayOf(period.Start)
		for i := 0; i < nights; i++ {
			if card.WeekendRateCents > 0 && daterange.IsWeekendNight(night) {
				cents += card.WeekendRateCents
			} else {
				cents += card.DailyRateCents
			}
			night = night.AddDate(0, 0, 1)
		}
		sub, err := money.New(cents, card.Currency)
		if err != nil {
			return Quote{}, err
		}
		subtotal = sub
		q.Nights = nights
	case BillHourly:
		if card.HourlyRateCents <= 0 {
			return Quote{}, ErrNoRate
		}
		hours := period.Hours()
		if card.MinHours > 0 && hours < card.MinHours {
			return Quote{}, ErrBelowMinimum
		}
		cents := int64(math.Floor(float64(card.HourlyRateCents) * hours))
		sub, err := money.New(cents, card.Currency)
		if err != nil {
			return Quote{}, err
		}
		subtotal = sub
		q.Hours = hours
	default:
		return Quote{}, ErrNoRate
	}

	fee := subtotal.Portion(c.ServiceFeeBps)
	protection, err := ProtectionFee(tier)
	if err != nil {
		return Quote{}, err
	}
	if protection.Currency != subtotal.Currency {
		protection = money.Money{Cents: protection.Cents, Currency: subtotal.Currency}
	}

	total, err := subtotal.Add(fee)
	if err != nil {
		return Quote{}, err
	}
	total, err = total.Add(protection)
	if err != nil {
		return Quote{}, err
	}

	q.Subtotal = subtotal
	q.ServiceFee = fee
	q.ProtectionFee = protection
	q.Total = total
	return q, nil
}
