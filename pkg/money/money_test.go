package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFormatARS(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"zero", "0", "$\u00a00"},
		{"whole amount has no decimals", "500", "$\u00a0500"},
		{"four digits are grouped", "2000", "$\u00a02.000"},
		{"three digits are not grouped", "999", "$\u00a0999"},
		{"five digits are grouped", "12000", "$\u00a012.000"},
		{"millions", "1234567", "$\u00a01.234.567"},
		{"trailing zeros trimmed", "180.00", "$\u00a0180"},
		{"one decimal kept", "180.50", "$\u00a0180,5"},
		{"rounds half away from zero", "10.005", "$\u00a010,01"},
		{"grouped with decimals", "45678.9", "$\u00a045.678,9"},
		{"negative", "-1500", "-$\u00a01.500"},
		{"negative rounding to zero has no sign", "-0.001", "$\u00a00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatARS(d(tt.amount)))
		})
	}
}

func TestFormatLocale(t *testing.T) {
	assert.Equal(t, "2000", FormatLocale(d("2000")), "checkout text keeps four-digit totals ungrouped")
	assert.Equal(t, "500", FormatLocale(d("500.00")))
	assert.Equal(t, "10.000", FormatLocale(d("10000")))
	assert.Equal(t, "1,235", FormatLocale(d("1.23456")))
	assert.Equal(t, "-7,5", FormatLocale(d("-7.5")))
}

func TestApplyMarkup(t *testing.T) {
	assert.Equal(t, "180.00", ApplyMarkup(d("100")).StringFixed(2))
	assert.Equal(t, "0.00", ApplyMarkup(d("0")).StringFixed(2))
	assert.Equal(t, "22.22", ApplyMarkup(d("12.345")).StringFixed(2))
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount(" 100.5 ")
	assert.NoError(t, err)
	assert.True(t, got.Equal(d("100.5")))

	for _, in := range []string{"", "  ", "NaN", "Inf", "12abc"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}
