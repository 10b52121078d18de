package report

import (
	"strings"
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

func testDues() []schedule.AmountDue {
	return []schedule.AmountDue{
		{Kind: schedule.KindSupport, DueDate: date(2020, time.March, 1), Amount: amount("322.92"), Description: "Child support due"},
		{Kind: schedule.KindSupport, DueDate: date(2020, time.April, 1), Amount: amount("322.92"), Description: "Child support due"},
	}
}

func testPayments() []payment.PaymentMade {
	return []payment.PaymentMade{
		{Date: date(2020, time.March, 1), Amount: amount("322.92"), Source: "EMPLOYER REMIT"},
		{Date: date(2020, time.March, 20), Amount: amount("100.00"), Source: "EMPLOYER REMIT"},
	}
}

func TestCombined(t *testing.T) {
	t.Run("merges by date with dues before payments", func(t *testing.T) {
		records := Combined(testDues(), testPayments())
		require.Len(t, records, 4)

		// 03/01 due before 03/01 payment, then 03/20 payment, then 04/01 due
		assert.Equal(t, TagDue, records[0].Tag)
		assert.Equal(t, TagPayment, records[1].Tag)
		assert.Equal(t, records[0].Date, records[1].Date)
		assert.Equal(t, TagPayment, records[2].Tag)
		assert.Equal(t, TagDue, records[3].Tag)
	})

	t.Run("payment reference carries into the note column", func(t *testing.T) {
		records := Combined(nil, testPayments())
		require.Len(t, records, 2)
		assert.Equal(t, "EMPLOYER REMIT", records[0].Note)
	})
}

func TestRenderCombined(t *testing.T) {
	renderer := NewCsvRenderer()

	out, err := renderer.RenderCombined(Combined(testDues(), testPayments()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Date,Description,Amount Due,Amount Paid,Notes", lines[0])
	assert.Contains(t, lines[1], "03/01/2020")
	assert.Contains(t, lines[1], "$322.92")

	// totals: due 645.84, paid 422.92, arrearage 222.92
	totals := lines[5]
	assert.Contains(t, totals, "TOTALS")
	assert.Contains(t, totals, "$645.84")
	assert.Contains(t, totals, "$422.92")
	assert.Contains(t, totals, "Arrearage: $222.92")
}

func TestRenderEnforcement(t *testing.T) {
	annotated, err := allocation.Allocate(testDues(), testPayments())
	require.NoError(t, err)

	out, err := NewCsvRenderer().RenderEnforcement(annotated)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header + due 1 + 2 fragments + due 2 (no fragments reach it fully; one partial)
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "Date,Description,Amount Due,Amount Applied,Remaining", lines[0])
	assert.Contains(t, lines[2], "Payment applied")
}
