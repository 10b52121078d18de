package schedule

import (
	"time"

	"github.com/arrearly/arrearly/internal/utils"
	"github.com/arrearly/arrearly/pkg/dependent"
	"github.com/shopspring/decimal"
)

const monthlyPerYear = 12

// CombinedConfig describes the complete order terms needed to build the
// merged due calendar for a case.
type CombinedConfig struct {
	Dependents     []dependent.Dependent
	SupportAmount  decimal.Decimal
	MedicalAmount  decimal.Decimal
	DentalAmount   decimal.Decimal
	StartDate      time.Time
	NotBeforeCourt int
}

// Combined builds the support, medical, and dental due calendars and merges
// them into one (due date, kind priority) ordered sequence. Medical and
// dental obligations are fixed payments: insurance reimbursements do not
// step down as dependents age out.
func Combined(cfg CombinedConfig, clock utils.Clock) ([]AmountDue, error) {
	stepDowns, err := dependent.StepDowns(cfg.Dependents, cfg.SupportAmount, cfg.NotBeforeCourt)
	if err != nil {
		return nil, err
	}

	support, err := Generate(GeneratorConfig{
		Kind:          KindSupport,
		InitialAmount: cfg.SupportAmount,
		PerYear:       monthlyPerYear,
		StartDate:     cfg.StartDate,
		StepDowns:     stepDowns,
		Description:   "Child support due",
	}, clock)
	if err != nil {
		return nil, err
	}

	medical := []AmountDue{}
	if cfg.MedicalAmount.IsPositive() {
		medical, err = Generate(GeneratorConfig{
			Kind:          KindMedical,
			InitialAmount: cfg.MedicalAmount,
			PerYear:       monthlyPerYear,
			StartDate:     cfg.StartDate,
			StepDowns:     stepDowns,
			Description:   "Medical support due",
			FixedPayment:  true,
		}, clock)
		if err != nil {
			return nil, err
		}
	}

	dental := []AmountDue{}
	if cfg.DentalAmount.IsPositive() {
		dental, err = Generate(GeneratorConfig{
			Kind:          KindDental,
			InitialAmount: cfg.DentalAmount,
			PerYear:       monthlyPerYear,
			StartDate:     cfg.StartDate,
			StepDowns:     stepDowns,
			Description:   "Dental support due",
			FixedPayment:  true,
		}, clock)
		if err != nil {
			return nil, err
		}
	}

	return Merge(support, medical, dental)
}
