// Package allocation applies a chronological payment stream to a
// chronological due stream under a strict oldest-debt-first rule. Its output
// is evidentiary: every cent of every applied payment is accounted for
// exactly once, dues are satisfied strictly in calendar order, and the inputs
// are preserved untouched for audit.
package allocation

import (
	"errors"
	"fmt"
	"time"

	"github.com/arrearly/arrearly/pkg/payment"
	"github.com/arrearly/arrearly/pkg/schedule"
	"github.com/shopspring/decimal"
)

// ErrUnsorted is returned when an input sequence is out of chronological
// order. The engine never re-sorts: an unsorted sequence means the upstream
// generator or parser is broken and must fail loudly.
var ErrUnsorted = errors.New("sequence is not sorted chronologically")

// Fragment is the portion of one payment applied to one due record.
type Fragment struct {
	// PaymentIndex is the position of the payment in the input sequence.
	PaymentIndex int
	// Date is the payment's date.
	Date time.Time
	// Applied is the portion of the payment consumed by this due.
	Applied decimal.Decimal
	// Leaves is the due's remaining balance after this fragment was applied.
	Leaves decimal.Decimal
}

// AnnotatedDue is a due record together with the fragments applied to it and
// the balance left outstanding. The embedded AmountDue keeps its original
// amount; only Remaining changes during allocation.
type AnnotatedDue struct {
	schedule.AmountDue
	Fragments []Fragment
	Remaining decimal.Decimal
}

// Paid is the portion of the original amount satisfied by payments.
func (a AnnotatedDue) Paid() decimal.Decimal {
	return a.Amount.Sub(a.Remaining)
}

// Allocate applies payments to dues strictly oldest-due-first and returns a
// new annotated sequence; neither input is mutated.
//
// Each payment is consumed in order: while it has unallocated balance and an
// unsatisfied due exists, min(payment balance, due balance) becomes a new
// fragment on the earliest unsatisfied due. A due may straddle several
// payments and a payment may split across several dues. There is no date
// matching beyond ordering: a payment made long after a missed due still pays
// that due first (arrears catch-up). Money left over once every due is
// satisfied stays unapplied; it is never carried backward as a credit.
//
// Both inputs must already be sorted ascending by date, otherwise an error
// wrapping ErrUnsorted is returned. The result is a deterministic, total
// function of the two inputs.
func Allocate(dues []schedule.AmountDue, payments []payment.PaymentMade) ([]AnnotatedDue, error) {
	if !schedule.IsSorted(dues) {
		return nil, fmt.Errorf("dues: %w", ErrUnsorted)
	}
	if !payment.IsSorted(payments) {
		return nil, fmt.Errorf("payments: %w", ErrUnsorted)
	}

	annotated := make([]AnnotatedDue, len(dues))
	for i, due := range dues {
		annotated[i] = AnnotatedDue{AmountDue: due, Remaining: due.Amount}
	}

	dueIdx := 0
	for paymentIdx, p := range payments {
		unallocated := p.Amount
		for unallocated.IsPositive() {
			// Zero-amount dues are satisfied already and consume nothing.
			for dueIdx < len(annotated) && !annotated[dueIdx].Remaining.IsPositive() {
				dueIdx++
			}
			if dueIdx == len(annotated) {
				break
			}

			applied := decimal.Min(unallocated, annotated[dueIdx].Remaining)
			annotated[dueIdx].Remaining = annotated[dueIdx].Remaining.Sub(applied)
			unallocated = unallocated.Sub(applied)
			annotated[dueIdx].Fragments = append(annotated[dueIdx].Fragments, Fragment{
				PaymentIndex: paymentIdx,
				Date:         p.Date,
				Applied:      applied,
				Leaves:       annotated[dueIdx].Remaining,
			})
		}
	}

	return annotated, nil
}
