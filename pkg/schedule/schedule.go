package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the obligation category of a due record.
type Kind string

const (
	KindSupport Kind = "support"
	KindMedical Kind = "medical"
	KindDental  Kind = "dental"
)

// Priority is the fixed tie-break order used when two kinds share a due date.
// It only makes merging deterministic; it has no legal significance.
func (k Kind) Priority() int {
	switch k {
	case KindSupport:
		return 0
	case KindMedical:
		return 1
	case KindDental:
		return 2
	default:
		return 3
	}
}

// Valid reports whether k is one of the known obligation kinds.
func (k Kind) Valid() bool {
	return k == KindSupport || k == KindMedical || k == KindDental
}

// AmountDue is one obligation on the payment calendar. Amount is the original
// amount due and is never mutated; the allocation engine derives a remaining
// balance alongside it.
type AmountDue struct {
	Kind        Kind
	DueDate     time.Time
	Amount      decimal.Decimal
	Description string
	// Note explains a change in the amount, e.g. "Ava aged out."
	Note string
}

// NewAmountDue validates and constructs a due record. Negative amounts are
// rejected here, not later.
func NewAmountDue(kind Kind, dueDate time.Time, amount decimal.Decimal, description string) (AmountDue, error) {
	if !kind.Valid() {
		return AmountDue{}, fmt.Errorf("unknown obligation kind %q", kind)
	}
	if dueDate.IsZero() {
		return AmountDue{}, fmt.Errorf("missing due date")
	}
	if amount.IsNegative() {
		return AmountDue{}, fmt.Errorf("negative amount due %s", amount)
	}
	return AmountDue{Kind: kind, DueDate: dueDate, Amount: amount, Description: description}, nil
}

// Less orders due records by (due date, kind priority).
func Less(a, b AmountDue) bool {
	if !a.DueDate.Equal(b.DueDate) {
		return a.DueDate.Before(b.DueDate)
	}
	return a.Kind.Priority() < b.Kind.Priority()
}

// IsSorted reports whether dues are in (due date, kind priority) order.
func IsSorted(dues []AmountDue) bool {
	for i := 1; i < len(dues); i++ {
		if Less(dues[i], dues[i-1]) {
			return false
		}
	}
	return true
}
