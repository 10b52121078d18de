// Package violation derives the structured violation facts used in
// enforcement pleadings from an allocated due sequence.
package violation

import (
	"fmt"
	"time"

	"github.com/arrearly/arrearly/pkg/allocation"
	"github.com/arrearly/arrearly/pkg/money"
	"github.com/arrearly/arrearly/pkg/schedule"
	"github.com/shopspring/decimal"
)

const narrativeDateFormat = "January 2, 2006"

const narrativeTemplate = "According to the terms of the Child Support Order, " +
	"Obligor was required to pay %s to Obligee on %s. " +
	"Obligor violated the Child Support Order by failing to pay the full amount of %s on or before %s. " +
	"Obligor instead paid a total of %s, leaving %s in arrears."

// Violation is one obligation left with a balance after every known payment
// has been applied. It carries enough structure to drive the pleading
// narrative without reaching back into the allocation output.
type Violation struct {
	Kind        schedule.Kind
	DueDate     time.Time
	Description string
	Required    decimal.Decimal
	Paid        decimal.Decimal
	Arrears     decimal.Decimal
}

// Derive emits one Violation, in input order, for every annotated due with a
// positive remaining balance.
//
// Delinquency is evaluated at end of processing, not as of the due date: a
// due eventually covered by a later catch-up payment is not a violation even
// though it was delinquent on its due date.
func Derive(annotated []allocation.AnnotatedDue) []Violation {
	violations := []Violation{}
	for _, due := range annotated {
		if !due.Remaining.IsPositive() {
			continue
		}
		violations = append(violations, Violation{
			Kind:        due.Kind,
			DueDate:     due.DueDate,
			Description: due.Description,
			Required:    due.Amount,
			Paid:        due.Paid(),
			Arrears:     due.Remaining,
		})
	}
	return violations
}

// Narrative renders the fixed mini-indictment paragraph for a pleading.
func (v Violation) Narrative() string {
	required := money.FormatUSD(v.Required)
	dueDate := v.DueDate.Format(narrativeDateFormat)
	return fmt.Sprintf(narrativeTemplate,
		required, dueDate,
		required, dueDate,
		money.FormatUSD(v.Paid), money.FormatUSD(v.Arrears),
	)
}
