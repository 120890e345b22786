package payments

import (
	"errors"

	"github.com/shopspring/decimal"
)

// minorUnitExp is the number of decimal places between major and minor
// units (kobo, pesewas, cents).
const minorUnitExp = 2

var (
	errNonPositiveAmount = errors.New("amount must be greater than zero")
	errSubMinorAmount    = errors.New("amount is more precise than the currency's minor unit")
)

// ToMinorUnits converts a major-unit amount into the provider's integer
// minor-unit representation.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, errNonPositiveAmount
	}
	minor := amount.Shift(minorUnitExp)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, errSubMinorAmount
	}
	return minor.IntPart(), nil
}

// FromMinorUnits converts a provider minor-unit amount into major units.
// The conversion is exact.
func FromMinorUnits(minor decimal.Decimal) decimal.Decimal {
	return minor.Shift(-minorUnitExp)
}
