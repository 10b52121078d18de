package allocation

import "github.com/shopspring/decimal"

// Summary holds the exhibit totals for an annotated due sequence.
type Summary struct {
	TotalDue       decimal.Decimal
	TotalPaid      decimal.Decimal
	TotalArrearage decimal.Decimal
}

// Totals reduces the annotated sequence to its exhibit totals. Pure O(n)
// reduction with no ordering dependency.
func Totals(annotated []AnnotatedDue) Summary {
	s := Summary{
		TotalDue:       decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalArrearage: decimal.Zero,
	}
	for _, due := range annotated {
		s.TotalDue = s.TotalDue.Add(due.Amount)
		s.TotalPaid = s.TotalPaid.Add(due.Paid())
		s.TotalArrearage = s.TotalArrearage.Add(due.Remaining)
	}
	return s
}
