// Package report builds the combined compliance report stream: dues and
// payments merged into one tagged, chronologically ordered sequence suitable
// for columnar rendering.
package report

import (
	"time"

	"github.com/arrearly/arrearly/pkg/payment"
	"github.com/arrearly/arrearly/pkg/schedule"
	"github.com/shopspring/decimal"
)

// Tag distinguishes the two record variants in the combined stream.
type Tag string

const (
	TagDue     Tag = "due"
	TagPayment Tag = "payment"
)

// priority orders dues before payments sharing a date, so a month's
// obligation always prints above the money received against it.
func (t Tag) priority() int {
	if t == TagDue {
		return 0
	}
	return 1
}

// Record is one line of the combined report stream.
type Record struct {
	Tag         Tag
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Note        string
}

// Combined merges a due calendar and a payment stream into one sequence
// ordered by (date, tag). Both inputs are expected in chronological order,
// as produced by the schedule generators and the payment parser.
func Combined(dues []schedule.AmountDue, payments []payment.PaymentMade) []Record {
	records := make([]Record, 0, len(dues)+len(payments))

	di, pi := 0, 0
	for di < len(dues) || pi < len(payments) {
		takeDue := pi == len(payments)
		if !takeDue && di < len(dues) {
			d, p := dues[di], payments[pi]
			takeDue = d.DueDate.Before(p.Date) ||
				(d.DueDate.Equal(p.Date) && TagDue.priority() < TagPayment.priority())
		}

		if takeDue {
			d := dues[di]
			records = append(records, Record{
				Tag:         TagDue,
				Date:        d.DueDate,
				Description: d.Description,
				Amount:      d.Amount,
				Note:        d.Note,
			})
			di++
			continue
		}

		p := payments[pi]
		records = append(records, Record{
			Tag:         TagPayment,
			Date:        p.Date,
			Description: "Payment received",
			Amount:      p.Amount,
			Note:        p.Source,
		})
		pi++
	}

	return records
}
