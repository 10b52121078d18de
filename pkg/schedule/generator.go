package schedule

import (
	"fmt"
	"time"

	"github.com/arrearly/arrearly/internal/utils"
	"github.com/arrearly/arrearly/pkg/dependent"
	"github.com/shopspring/decimal"
)

// GeneratorConfig describes one obligation calendar to generate.
type GeneratorConfig struct {
	Kind          Kind
	InitialAmount decimal.Decimal
	// PerYear is the number of payments due per year. Accepted for forward
	// compatibility with sub-monthly orders; generation is monthly today.
	PerYear     int
	StartDate   time.Time
	StepDowns   []dependent.StepDown
	Description string
	// FixedPayment keeps every due at InitialAmount regardless of step-downs.
	// Used for insurance reimbursement obligations that do not scale with
	// the dependent count.
	FixedPayment bool
}

// Generate produces the due calendar for one obligation kind. The step-down
// schedule is read by value and a new slice is returned; the input is never
// mutated. Generation stops when the next due date passes the clock's notion
// of today, or when the last dependent has aged out.
func Generate(cfg GeneratorConfig, clock utils.Clock) ([]AmountDue, error) {
	if !cfg.Kind.Valid() {
		return nil, fmt.Errorf("unknown obligation kind %q", cfg.Kind)
	}
	if cfg.InitialAmount.IsNegative() {
		return nil, fmt.Errorf("negative initial amount %s", cfg.InitialAmount)
	}
	if cfg.PerYear <= 0 {
		return nil, fmt.Errorf("payments per year must be positive, got %d", cfg.PerYear)
	}
	if cfg.StartDate.IsZero() {
		return nil, fmt.Errorf("missing start date")
	}

	today := clock.Now()
	calendar := []AmountDue{}
	months := 0
	nextDue := cfg.StartDate
	note := ""

	for _, sd := range cfg.StepDowns {
		amount := sd.Amount
		if cfg.FixedPayment {
			amount = cfg.InitialAmount
		}

		for !nextDue.After(sd.LastDueDate) {
			due, err := NewAmountDue(cfg.Kind, nextDue, amount, cfg.Description)
			if err != nil {
				return nil, err
			}
			due.Note = note
			note = ""
			calendar = append(calendar, due)

			months++
			nextDue = addMonthsClamped(cfg.StartDate, months)
			if nextDue.After(today) {
				return calendar, nil
			}
		}
		note = fmt.Sprintf("%s aged out.", sd.Dependent.Name)
	}
	return calendar, nil
}

// addMonthsClamped advances start by whole months, anchored to the original
// start day. Go's AddDate normalizes overflow (Jan 31 plus one month becomes
// Mar 2/3), which would skip a month and drift the due day on orders starting
// the 29th through 31st; instead the day clamps to the target month's last
// day, the way court orders are read (Jan 31 -> Feb 28/29 -> Mar 31).
func addMonthsClamped(start time.Time, months int) time.Time {
	firstOfMonth := time.Date(start.Year(), start.Month()+time.Month(months), 1,
		0, 0, 0, 0, start.Location())
	day := start.Day()
	if lastDay := firstOfMonth.AddDate(0, 1, -1).Day(); day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day,
		0, 0, 0, 0, start.Location())
}
