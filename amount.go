package dfpextract

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParseAmount parses an amount printed in Brazilian format: "." separates
// thousands and "," separates decimals. Negative amounts are either wrapped
// in parentheses or prefixed with "-". Empty cells and dash placeholders
// return ErrNoAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	text := strings.Join(strings.Fields(s), "")

	switch text {
	case "", "-", "—", "–":
		return decimal.Zero, ErrNoAmount
	}

	negative := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		negative = true
		text = text[1 : len(text)-1]
	}
	if strings.HasPrefix(text, "-") {
		negative = !negative
		text = text[1:]
	}
	if text == "" {
		return decimal.Zero, errors.Errorf("invalid amount %q", s)
	}

	text = strings.ReplaceAll(text, ".", "")
	text = strings.Replace(text, ",", ".", 1)

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "invalid amount %q", s)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}
