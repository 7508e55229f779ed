package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rezonia/invoice-autotransfer/internal/money"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		price    string
		expected string
	}{
		{"whole numbers", "3", "100", "300.00"},
		{"cents round half up", "3", "33.335", "100.01"},
		{"fractional quantity", "2.5", "10.10", "25.25"},
		{"zero quantity", "0", "99.99", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := decimal.RequireFromString(tt.quantity)
			p := decimal.RequireFromString(tt.price)
			assert.Equal(t, tt.expected, money.Format(money.LineTotal(q, p)))
		})
	}
}

func TestSum(t *testing.T) {
	values := []decimal.Decimal{
		decimal.NewFromFloat(10.50),
		decimal.NewFromFloat(0.25),
		decimal.NewFromInt(4),
	}
	assert.Equal(t, "14.75", money.Format(money.Sum(values)))
	assert.Equal(t, "0.00", money.Format(money.Sum(nil)))
}

func TestFormat_FixedPlaces(t *testing.T) {
	assert.Equal(t, "0.00", money.Format(money.Zero))
	assert.Equal(t, "17.30", money.Format(decimal.NewFromFloat(17.3)))
}
