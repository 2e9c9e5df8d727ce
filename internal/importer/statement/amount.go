package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a grouped amount such as "1,23,456.50" or "-320.00".
// Currency markers and a trailing "Dr"/"Cr" are ignored; "Dr" makes the amount negative.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	neg := false

	upper := strings.ToUpper(clean)
	switch {
	case strings.HasSuffix(upper, "DR"):
		neg = true
		clean = clean[:len(clean)-2]
	case strings.HasSuffix(upper, "CR"):
		clean = clean[:len(clean)-2]
	}

	clean = strings.NewReplacer(",", "", "₹", "", "INR", "", " ", "").Replace(clean)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, err
	}

	if neg {
		d = d.Neg()
	}

	return d, nil
}
