package payment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arrearly/arrearly/pkg/money"
)

// Payment records pasted from the disbursement agency's web site arrive as
// tab-separated values: date, amount, free-text reference.
const (
	recordDateFormat = "01/02/2006"
	dateColumn       = 0
	amountColumn     = 1
	sourceColumn     = 2
)

// ParseError identifies the exact row and field that could not be parsed.
// Parsing is all-or-nothing: the parsed figures feed legal filings, so a bad
// row fails the whole paste rather than being silently skipped.
type ParseError struct {
	Row   int
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s value %q in row %d", e.Field, e.Value, e.Row)
}

// ParseRecords converts pasted tab-separated payment rows into PaymentMade
// records sorted by payment date. Blank lines are ignored; any malformed row
// produces a *ParseError naming the offending row.
func ParseRecords(text string) ([]PaymentMade, error) {
	payments := []PaymentMade{}

	for i, row := range strings.Split(text, "\n") {
		rowNumber := i + 1
		row = strings.TrimRight(row, "\r")
		if strings.TrimSpace(row) == "" {
			continue
		}

		fields := strings.Split(row, "\t")
		if len(fields) <= amountColumn {
			return nil, &ParseError{Row: rowNumber, Field: "record", Value: row}
		}

		date, err := time.Parse(recordDateFormat, strings.TrimSpace(fields[dateColumn]))
		if err != nil {
			return nil, &ParseError{Row: rowNumber, Field: "date", Value: fields[dateColumn]}
		}

		amount, err := money.ParseAmount(fields[amountColumn])
		if err != nil {
			return nil, &ParseError{Row: rowNumber, Field: "amount", Value: fields[amountColumn]}
		}

		source := ""
		if len(fields) > sourceColumn {
			source = strings.TrimSpace(fields[sourceColumn])
		}

		p, err := NewPaymentMade(date, amount, source)
		if err != nil {
			return nil, &ParseError{Row: rowNumber, Field: "record", Value: row}
		}
		payments = append(payments, p)
	}

	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].Date.Before(payments[j].Date)
	})
	return payments, nil
}
