package domain

import (
	"strings"

	"golang.org/x/text/currency"

	dErrors "rentwise/pkg/domain-errors"
)

// Currency is an ISO-4217 currency code such as GBP.
// Invariant: always a recognised, upper-case three-letter code.
type Currency string

// ParseCurrency validates s against the ISO-4217 table.
func ParseCurrency(s string) (Currency, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "currency must be a three-letter ISO-4217 code")
	}
	unit, err := currency.ParseISO(s)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown currency code "+s)
	}
	return Currency(unit.String()), nil
}

func (c Currency) String() string {
	return string(c)
}

// Scale is the number of minor-unit digits for c: 2 for GBP, 0 for JPY.
func (c Currency) Scale() int32 {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}
