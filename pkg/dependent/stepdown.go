package dependent

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Children are presumed to graduate high school in June; the obligation steps
// down after the last day of that month.
const (
	stepDownMonth = time.June
	stepDownDay   = 30
)

// StepDown is one segment of the obligation schedule. While Dependent is the
// oldest child still counted, Amount is payable on every due date up to and
// including LastDueDate. Counted is the number of dependents still eligible
// during the segment.
type StepDown struct {
	Dependent   Dependent
	LastDueDate time.Time
	Amount      decimal.Decimal
	Counted     int
}

// StepDowns derives the step-down schedule from the dependents covered by the
// order. Dependents are consumed oldest first; each produces one segment
// ending on June 30 of the school year in which that dependent turns 18. The
// segment amount is the guideline recomputation of initialAmount for the
// number of dependents still counted, except that the caller may treat the
// amount as fixed (insurance reimbursements) by ignoring it.
//
// notBeforeCourt is the number of children the obligor must support who are
// not part of this action; it selects the guideline factor row.
func StepDowns(dependents []Dependent, initialAmount decimal.Decimal, notBeforeCourt int) ([]StepDown, error) {
	if len(dependents) == 0 {
		return nil, fmt.Errorf("no dependents")
	}
	if initialAmount.IsNegative() {
		return nil, fmt.Errorf("negative initial amount %s", initialAmount)
	}
	for _, d := range dependents {
		if _, err := New(d.Name, d.DOB); err != nil {
			return nil, err
		}
	}

	byAge := make([]Dependent, len(dependents))
	copy(byAge, dependents)
	sort.SliceStable(byAge, func(i, j int) bool {
		return byAge[i].DOB.Before(byAge[j].DOB)
	})

	initialCount := len(byAge)
	schedule := make([]StepDown, 0, initialCount)
	for i, d := range byAge {
		counted := initialCount - i
		schedule = append(schedule, StepDown{
			Dependent:   d,
			LastDueDate: agesOut(d.DOB),
			Amount:      stepDownAmount(initialAmount, initialCount, counted, notBeforeCourt),
			Counted:     counted,
		})
	}

	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].LastDueDate.Before(schedule[j].LastDueDate)
	})
	return schedule, nil
}

// agesOut returns the last due date before the dependent's support ends:
// June 30 of the year the dependent turns 18 if the birthday falls in the
// school year ending that June, otherwise June 30 of the following year.
func agesOut(dob time.Time) time.Time {
	turns18 := dob.AddDate(18, 0, 0)
	year := turns18.Year()
	if turns18.Month() > stepDownMonth {
		year++
	}
	return time.Date(year, stepDownMonth, stepDownDay, 0, 0, 0, 0, time.UTC)
}

// guidelineFactors is the percentage-of-net-resources grid. Rows are indexed
// by the number of children the obligor supports outside this action, columns
// by the number of children before the court (1..7+).
var guidelineFactors = [][]string{
	{"0.2000", "0.2500", "0.3000", "0.3500", "0.4000", "0.4000", "0.4000"},
	{"0.1750", "0.2250", "0.2738", "0.3220", "0.3733", "0.3771", "0.3800"},
	{"0.1600", "0.2063", "0.2520", "0.3033", "0.3543", "0.3600", "0.3644"},
	{"0.1475", "0.1900", "0.2400", "0.2900", "0.3400", "0.3467", "0.3520"},
	{"0.1360", "0.1833", "0.2314", "0.2800", "0.3289", "0.3360", "0.3418"},
	{"0.1333", "0.1786", "0.2250", "0.2722", "0.3200", "0.3273", "0.3333"},
	{"0.1314", "0.1750", "0.2200", "0.2660", "0.3127", "0.3200", "0.3262"},
	{"0.1300", "0.1722", "0.2160", "0.2609", "0.3067", "0.3138", "0.3200"},
}

func factorFor(childCount, notBeforeCourt int) decimal.Decimal {
	row := notBeforeCourt
	if row < 0 {
		row = 0
	}
	if row >= len(guidelineFactors) {
		row = len(guidelineFactors) - 1
	}
	factors := guidelineFactors[row]

	col := childCount - 1
	if col < 0 {
		col = 0
	}
	if col >= len(factors) {
		col = len(factors) - 1
	}
	return decimal.RequireFromString(factors[col])
}

// stepDownAmount backs the implied monthly net resources out of the initial
// award and reapplies the guideline factor for the remaining child count.
func stepDownAmount(initialAmount decimal.Decimal, initialCount, remainingCount, notBeforeCourt int) decimal.Decimal {
	initialFactor := factorFor(initialCount, notBeforeCourt)
	newFactor := factorFor(remainingCount, notBeforeCourt)
	netResources := initialAmount.Div(initialFactor)
	return netResources.Mul(newFactor).Round(2)
}
