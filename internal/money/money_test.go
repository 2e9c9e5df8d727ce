package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/finco/internal/money"
)

func TestFormat(t *testing.T) {
	type testCase struct {
		name string
		in   string
		want string
	}

	tests := []testCase{
		{name: "Small", in: "450", want: "₹450"},
		{name: "Thousands", in: "24500", want: "₹24,500"},
		{name: "Zero", in: "0", want: "₹0"},
		{name: "Fraction", in: "99.5", want: "₹99.50"},
		{name: "Negative", in: "-320", want: "-₹320"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.Format(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "450", money.Plain(decimal.RequireFromString("450.00")))
	assert.Equal(t, "12.30", money.Plain(decimal.RequireFromString("12.3")))
}
