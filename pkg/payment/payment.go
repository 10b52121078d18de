package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMade is one payment received from the obligor, as reported by the
// disbursement agency. Input only, never mutated by the pipeline.
type PaymentMade struct {
	Date   time.Time
	Amount decimal.Decimal
	// Source is the free-text reference from the agency record.
	Source string
}

// NewPaymentMade validates and constructs a payment record. Negative amounts
// are rejected here, not later.
func NewPaymentMade(date time.Time, amount decimal.Decimal, source string) (PaymentMade, error) {
	if date.IsZero() {
		return PaymentMade{}, fmt.Errorf("missing payment date")
	}
	if amount.IsNegative() {
		return PaymentMade{}, fmt.Errorf("negative payment amount %s", amount)
	}
	return PaymentMade{Date: date, Amount: amount, Source: source}, nil
}

// IsSorted reports whether payments are in chronological order.
func IsSorted(payments []PaymentMade) bool {
	for i := 1; i < len(payments); i++ {
		if payments[i].Date.Before(payments[i-1].Date) {
			return false
		}
	}
	return true
}
