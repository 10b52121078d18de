package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a currency value as pasted from payment records or
// entered in order terms. A leading dollar sign and thousands separators are
// tolerated. Negative amounts are rejected here so that bad input never
// reaches the reconciliation pipeline.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %q", s)
	}
	return d, nil
}

// FormatUSD renders a decimal as US currency with comma grouping, e.g.
// $1,234.56. Used by the violation narratives and the compliance report.
func FormatUSD(d decimal.Decimal) string {
	negative := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	dot := strings.Index(fixed, ".")
	intPart := fixed[:dot]
	fracPart := fixed[dot:]

	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}

	out := "$" + b.String() + fracPart
	if negative {
		out = "-" + out
	}
	return out
}
