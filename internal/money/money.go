// Package money holds the fixed-point arithmetic used for fees and currency
// conversion. Amounts are integer minor units; every fractional intermediate
// is rounded half-to-even back to a whole minor unit.
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"gw-payment-engine/internal/custom_err"
)

var (
	// OverdraftSurcharge is charged on the part of a withdrawal covered by overdraft.
	OverdraftSurcharge = decimal.RequireFromString("0.05")
	// InternationalFee is charged on top of every international transfer.
	InternationalFee = decimal.RequireFromString("0.01")
)

// ErrOverflow means a result does not fit into int64 minor units.
var ErrOverflow = fmt.Errorf("amount out of range: %w", custom_err.ErrInvalidAmount)

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Percent returns amount*rate rounded half-to-even.
func Percent(amount int64, rate decimal.Decimal) (int64, error) {
	return toMinor(decimal.NewFromInt(amount).Mul(rate))
}

// Convert returns amount*rate rounded half-to-even.
func Convert(amount int64, rate decimal.Decimal) (int64, error) {
	return toMinor(decimal.NewFromInt(amount).Mul(rate))
}

// WithFee returns amount plus its percentage fee, and the fee itself.
func WithFee(amount int64, rate decimal.Decimal) (total, fee int64, err error) {
	fee, err = Percent(amount, rate)
	if err != nil {
		return 0, 0, err
	}
	if (fee > 0 && amount > math.MaxInt64-fee) || (fee < 0 && amount < math.MinInt64-fee) {
		return 0, 0, ErrOverflow
	}
	return amount + fee, fee, nil
}

func toMinor(d decimal.Decimal) (int64, error) {
	r := d.RoundBank(0)
	if r.GreaterThan(maxMinor) || r.LessThan(minMinor) {
		return 0, ErrOverflow
	}
	return r.IntPart(), nil
}

// Format renders minor units as "1,234.56 USD".
func Format(amount int64, currency fmt.Stringer) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	major := fmt.Sprintf("%d", amount/100)

	var b strings.Builder
	for i, r := range major {
		if i > 0 && (len(major)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s%s.%02d %s", sign, b.String(), amount%100, currency)
}
