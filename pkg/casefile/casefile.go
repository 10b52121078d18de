package casefile

import (
	"errors"
	"fmt"
	"time"

	"github.com/arrearly/arrearly/pkg/dependent"
	"github.com/arrearly/arrearly/pkg/payment"
	"github.com/shopspring/decimal"
)

var ErrCaseNotFound = errors.New("case not found")

// OrderTerms are the monetary terms of the support order being enforced.
type OrderTerms struct {
	SupportAmount decimal.Decimal
	MedicalAmount decimal.Decimal
	DentalAmount  decimal.Decimal
	StartDate     time.Time
	// NotBeforeCourt is the number of children the obligor must support who
	// are not part of this action.
	NotBeforeCourt int
}

// Case is one enforcement case file: the parties, the order terms, the
// dependents covered, and the payments recorded against the order.
type Case struct {
	Id         int
	Uid        string
	Obligor    string
	Obligee    string
	Terms      OrderTerms
	Dependents []dependent.Dependent
	Payments   []payment.PaymentMade
}

// Validate checks the fields required before a case can be stored.
func (c Case) Validate() error {
	if c.Obligor == "" {
		return fmt.Errorf("missing obligor name")
	}
	if c.Obligee == "" {
		return fmt.Errorf("missing obligee name")
	}
	if c.Terms.StartDate.IsZero() {
		return fmt.Errorf("missing order start date")
	}
	if c.Terms.SupportAmount.IsNegative() ||
		c.Terms.MedicalAmount.IsNegative() ||
		c.Terms.DentalAmount.IsNegative() {
		return fmt.Errorf("order amounts must not be negative")
	}
	if c.Terms.NotBeforeCourt < 0 {
		return fmt.Errorf("children not before court must not be negative")
	}
	if len(c.Dependents) == 0 {
		return fmt.Errorf("case must list at least one dependent")
	}
	for _, d := range c.Dependents {
		if _, err := dependent.New(d.Name, d.DOB); err != nil {
			return err
		}
	}
	return nil
}
