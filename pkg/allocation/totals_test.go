package allocation

import (
	"testing"
	"time"

	"github.com/arrearly/arrearly/pkg/payment"
	"github.com/arrearly/arrearly/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotals(t *testing.T) {
	t.Run("sums due, paid, and arrearage", func(t *testing.T) {
		dues := []schedule.AmountDue{
			due(schedule.KindSupport, date(2020, time.March, 1), "322.92"),
			due(schedule.KindMedical, date(2020, time.March, 1), "100.00"),
			due(schedule.KindSupport, date(2020, time.April, 1), "322.92"),
		}
		payments := []payment.PaymentMade{paid(date(2020, time.March, 20), "400.00")}

		annotated, err := Allocate(dues, payments)
		require.NoError(t, err)

		s := Totals(annotated)
		assert.True(t, s.TotalDue.Equal(amount("745.84")), "due %s", s.TotalDue)
		assert.True(t, s.TotalPaid.Equal(amount("400.00")), "paid %s", s.TotalPaid)
		assert.True(t, s.TotalArrearage.Equal(amount("345.84")), "arrearage %s", s.TotalArrearage)
		assert.True(t, s.TotalDue.Equal(s.TotalPaid.Add(s.TotalArrearage)))
	})

	t.Run("empty sequence totals to zero", func(t *testing.T) {
		s := Totals(nil)
		assert.True(t, s.TotalDue.IsZero())
		assert.True(t, s.TotalPaid.IsZero())
		assert.True(t, s.TotalArrearage.IsZero())
	})
}
