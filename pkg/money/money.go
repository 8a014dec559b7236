// Package money форматирует суммы по аргентинским правилам (es-AR) и
// применяет фиксированную наценку к базовой цене товара.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	currencyPrefix = "$\u00a0"

	thousandsSep = '.'
	decimalSep   = ','

	// es-AR (CLDR) группирует уже четырёхзначные суммы: "$ 1.500".
	priceMinGrouping = 4
	// Текст заказа не группирует четырёхзначные суммы: "x2 - Total: $2000".
	localeMinGrouping = 5

	priceFractionDigits  = 2
	localeFractionDigits = 3
)

// Markup — наценка 80%, применяется один раз при создании товара.
var Markup = decimal.RequireFromString("1.8")

// FormatARS форматирует сумму как цену в песо: "$ 1.500", "$ 12.345,5".
// Дробная часть не дополняется нулями, максимум два знака.
func FormatARS(amount decimal.Decimal) string {
	neg, num := formatNumber(amount, priceFractionDigits, priceMinGrouping)
	if neg {
		return "-" + currencyPrefix + num
	}
	return currencyPrefix + num
}

// FormatLocale форматирует сумму для текста заказа: разделители es-AR, без символа валюты,
// до трёх знаков после запятой. Четырёхзначные суммы не группируются.
func FormatLocale(amount decimal.Decimal) string {
	neg, num := formatNumber(amount, localeFractionDigits, localeMinGrouping)
	if neg {
		return "-" + num
	}
	return num
}

// ErrInvalidAmount возвращается ParseAmount для пустых и нечисловых строк (включая NaN/Inf).
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount разбирает сумму в формате "1234.56".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	return d, nil
}

// ApplyMarkup возвращает цену продажи: base × 1.8, округлённую до двух знаков.
func ApplyMarkup(base decimal.Decimal) decimal.Decimal {
	return base.Mul(Markup).Round(priceFractionDigits)
}

// formatNumber округляет модуль суммы (half away from zero), убирает хвостовые нули
// дробной части и расставляет разделители групп.
func formatNumber(amount decimal.Decimal, maxFrac int32, minGrouping int) (bool, string) {
	rounded := amount.Abs().Round(maxFrac)
	neg := amount.IsNegative() && !rounded.IsZero()

	fixed := rounded.StringFixed(maxFrac)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	fracPart = strings.TrimRight(fracPart, "0")

	var b strings.Builder
	b.Grow(len(intPart) + len(intPart)/3 + len(fracPart) + 1)
	b.WriteString(groupThousands(intPart, minGrouping))
	if fracPart != "" {
		b.WriteByte(decimalSep)
		b.WriteString(fracPart)
	}

	return neg, b.String()
}

func groupThousands(digits string, minGrouping int) string {
	if len(digits) < minGrouping {
		return digits
	}

	var b strings.Builder
	rem := len(digits) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(digits[:rem])
	for i := rem; i < len(digits); i += 3 {
		b.WriteByte(thousandsSep)
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
