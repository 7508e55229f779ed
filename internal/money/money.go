// Package money holds the decimal arithmetic conventions for document
// amounts: two decimal places, half-up, matching what the Service Layer
// stores.
package money

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// LineTotal computes quantity * price, rounded to 2 places
func LineTotal(quantity, price decimal.Decimal) decimal.Decimal {
	return quantity.Mul(price).Round(2)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// Format renders an amount with exactly two decimal places
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
