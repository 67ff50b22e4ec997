// Package money переводит денежные суммы между десятичной записью и центами.
package money

import (
	"github.com/procesos/product-directory/pkg/e"
	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxPrice = decimal.NewFromInt(1_000_000_000) // 1 млрд в основной валюте
)

// ToCents переводит сумму в центы. Отрицательные, слишком большие суммы
// и суммы с точностью больше двух знаков отклоняются.
func ToCents(d decimal.Decimal) (int64, error) {
	if d.IsNegative() || d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, e.ErrPricePrecision
	}

	return d.Mul(hundred).Round(0).IntPart(), nil
}

// FromCents возвращает сумму в основной валюте.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
