package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gearbook/internal/domain/shared/daterange"
	"gearbook/internal/domain/shared/money"
)

func period(t *testing.T, start, end time.Time) daterange.Range {
	t.Helper()
	r, err := daterange.New(start, end)
	require.NoError(t, err)
	return r
}

func TestQuoteForDaily(t *testing.T) {
	calc := NewCalculator(DefaultServiceFeeBps)
	card := RateCard{Currency: "USD", DailyRateCents: 15000}

	// Monday 10:00 through Wednesday 10:00, two weekday nights.
	p := period(t,
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	)
	q, err := calc.QuoteFor(card, p, BillDaily, TierNone)
	require.NoError(t, err)
	require.Equal(t, 2, q.Nights)
	require.Equal(t, money.USD(30000), q.Subtotal)
	require.Equal(t, money.USD(1500), q.ServiceFee)
	require.True(t, q.ProtectionFee.IsZero())
	require.Equal(t, money.USD(31500), q.Total)
}

func TestQuoteForWeekendRate(t *testing.T) {
	calc := NewCalculator(DefaultServiceFeeBps)
	card := RateCard{Currency: "USD", DailyRateCents: 15000, WeekendRateCents: 18000}

	t.Run("friday and saturday nights use the weekend rate", func(t *testing.T) {
		p := period(t,
			time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC), // Friday
			time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), // Sunday
		)
		q, err := calc.QuoteFor(card, p, BillDaily, TierNone)
		require.NoError(t, err)
		require.Equal(t, 2, q.Nights)
		require.Equal(t, money.USD(36000), q.Subtotal)
	})

	t.Run("mixed week", func(t *testing.T) {
		p := period(t,
			time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC), // Thursday
			time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), // Sunday
		)
		q, err := calc.QuoteFor(card, p, BillDaily, TierNone)
		require.NoError(t, err)
		require.Equal(t, 3, q.Nights)
		// Thursday at the daily rate, Friday and Saturday at the weekend rate.
		require.Equal(t, money.USD(15000+18000+18000), q.Subtotal)
	})

	t.Run("no weekend rate configured falls back to daily", func(t *testing.T) {
		flat := RateCard{Currency: "USD", DailyRateCents: 15000}
		p := period(t,
			time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
		)
		q, err := calc.QuoteFor(flat, p, BillDaily, TierNone)
		require.NoError(t, err)
		require.Equal(t, money.USD(30000), q.Subtotal)
	})
}

func TestQuoteForHourly(t *testing.T) {
	calc := NewCalculator(DefaultServiceFeeBps)
	card := RateCard{Currency: "USD", HourlyRateCents: 900, MinHours: 2}

	t.Run("bills the exact fractional duration", func(t *testing.T) {
		p := period(t,
			time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC),
		)
		q, err := calc.QuoteFor(card, p, BillHourly, TierNone)
		require.NoError(t, err)
		require.InDelta(t, 2.5, q.Hours, 1e-9)
		require.Equal(t, money.USD(2250), q.Subtotal)
	})

	t.Run("fractional cents truncate", func(t *testing.T) {
		// 10 minutes at 999c/h is 166.5 cents; the renter pays 166.
		cheap := RateCard{Currency: "USD", HourlyRateCents: 999}
		p := period(t,
			time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 10, 10, 0, 0, time.UTC),
		)
		q, err := calc.QuoteFor(cheap, p, BillHourly, TierNone)
		require.NoError(t, err)
		require.Equal(t, money.USD(166), q.Subtotal)
	})

	t.Run("below minimum duration", func(t *testing.T) {
		p := period(t,
			time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		)
		_, err := calc.QuoteFor(card, p, BillHourly, TierNone)
		require.ErrorIs(t, err, ErrBelowMinimum)
	})

	t.Run("no hourly rate", func(t *testing.T) {
		daily := RateCard{Currency: "USD", DailyRateCents: 15000}
		p := period(t,
			time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		)
		_, err := calc.QuoteFor(daily, p, BillHourly, TierNone)
		require.ErrorIs(t, err, ErrNoRate)
	})
}

func TestQuoteForProtectionTiers(t *testing.T) {
	calc := NewCalculator(DefaultServiceFeeBps)
	card := RateCard{Currency: "USD", DailyRateCents: 10000}
	p := period(t,
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
	)

	cases := []struct {
		tier ProtectionTier
		fee  int64
	}{
		{TierNone, 0},
		{TierBasic, 0},
		{TierStandard, 2000},
		{TierPremier, 5900},
	}
	for _, tc := range cases {
		t.Run(string(tc.tier), func(t *testing.T) {
			q, err := calc.QuoteFor(card, p, BillDaily, tc.tier)
			require.NoError(t, err)
			require.Equal(t, tc.fee, q.ProtectionFee.Cents)
			require.Equal(t, q.Subtotal.Cents+q.ServiceFee.Cents+q.ProtectionFee.Cents, q.Total.Cents)
		})
	}

	_, err := calc.QuoteFor(card, p, BillDaily, ProtectionTier("platinum"))
	require.ErrorIs(t, err, ErrUnknownTier)
}

func TestQuoteForDailyUnderOneNight(t *testing.T) {
	calc := NewCalculator(DefaultServiceFeeBps)
	card := RateCard{Currency: "USD", DailyRateCents: 10000}
	p := period(t,
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
	)
	_, err := calc.QuoteFor(card, p, BillDaily, TierNone)
	require.ErrorIs(t, err, ErrBelowMinimum)
}

func TestQuoteForMissingCurrency(t *testing.T) {
	calc := NewCalculator(DefaultServiceFeeBps)
	p := period(t,
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	)
	_, err := calc.QuoteFor(RateCard{DailyRateCents: 100}, p, BillDaily, TierNone)
	require.ErrorIs(t, err, ErrCurrencyUnknown)
}
