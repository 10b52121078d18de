package violation

import (
	"testing"
	"time"

	"github.com/arrearly/arrearly/pkg/allocation"
	"github.com/arrearly/arrearly/pkg/payment"
	"github.com/arrearly/arrearly/pkg/schedule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDerive(t *testing.T) {
	t.Run("unpaid dues become violations in order", func(t *testing.T) {
		dues := []schedule.AmountDue{
			{Kind: schedule.KindSupport, DueDate: date(2020, time.March, 1), Amount: amount("322.92"), Description: "Child support due"},
			{Kind: schedule.KindMedical, DueDate: date(2020, time.March, 1), Amount: amount("100.00"), Description: "Medical support due"},
		}
		annotated, err := allocation.Allocate(dues, nil)
		require.NoError(t, err)

		violations := Derive(annotated)
		require.Len(t, violations, 2)

		assert.Equal(t, schedule.KindSupport, violations[0].Kind)
		assert.True(t, violations[0].Required.Equal(amount("322.92")))
		assert.True(t, violations[0].Paid.IsZero())
		assert.True(t, violations[0].Arrears.Equal(amount("322.92")))

		assert.Equal(t, schedule.KindMedical, violations[1].Kind)
		assert.True(t, violations[1].Arrears.Equal(amount("100.00")))
	})

	t.Run("partially paid due keeps paid and arrears split", func(t *testing.T) {
		dues := []schedule.AmountDue{
			{Kind: schedule.KindSupport, DueDate: date(2020, time.June, 1), Amount: amount("322.92"), Description: "Child support due"},
		}
		payments := []payment.PaymentMade{
			{Date: date(2020, time.August, 21), Amount: amount("64.16")},
			{Date: date(2020, time.October, 27), Amount: amount("124.16")},
			{Date: date(2020, time.December, 30), Amount: amount("57.16")},
		}
		annotated, err := allocation.Allocate(dues, payments)
		require.NoError(t, err)

		violations := Derive(annotated)
		require.Len(t, violations, 1)
		assert.True(t, violations[0].Paid.Equal(amount("245.48")))
		assert.True(t, violations[0].Arrears.Equal(amount("77.44")))
	})

	t.Run("a due paid late is not a violation", func(t *testing.T) {
		dues := []schedule.AmountDue{
			{Kind: schedule.KindSupport, DueDate: date(2020, time.March, 1), Amount: amount("100.00"), Description: "Child support due"},
		}
		// paid more than a year late, but paid in full
		payments := []payment.PaymentMade{
			{Date: date(2021, time.May, 1), Amount: amount("100.00")},
		}
		annotated, err := allocation.Allocate(dues, payments)
		require.NoError(t, err)

		assert.Empty(t, Derive(annotated))
	})

	t.Run("fully satisfied sequence yields no violations", func(t *testing.T) {
		dues := []schedule.AmountDue{
			{Kind: schedule.KindSupport, DueDate: date(2020, time.March, 1), Amount: amount("100.00")},
			{Kind: schedule.KindSupport, DueDate: date(2020, time.April, 1), Amount: amount("50.00")},
		}
		payments := []payment.PaymentMade{
			{Date: date(2020, time.April, 15), Amount: amount("200.00")},
		}
		annotated, err := allocation.Allocate(dues, payments)
		require.NoError(t, err)

		assert.Empty(t, Derive(annotated))
	})
}

func TestNarrative(t *testing.T) {
	v := Violation{
		Kind:        schedule.KindSupport,
		DueDate:     date(2020, time.June, 1),
		Description: "Child support due",
		Required:    amount("322.92"),
		Paid:        amount("245.48"),
		Arrears:     amount("77.44"),
	}

	want := "According to the terms of the Child Support Order, " +
		"Obligor was required to pay $322.92 to Obligee on June 1, 2020. " +
		"Obligor violated the Child Support Order by failing to pay the full amount of $322.92 on or before June 1, 2020. " +
		"Obligor instead paid a total of $245.48, leaving $77.44 in arrears."
	assert.Equal(t, want, v.Narrative())
}
