package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in the currency's minor unit (pence, cents, kobo).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: NormalizeCurrency(currency)}
}

func Zero(currency string) Money {
	return New(0, currency)
}

func NormalizeCurrency(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}, nil
}

func (m Money) Mul(qty int64) Money {
	return Money{Amount: m.Amount * qty, Currency: m.Currency}
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -Exponent(m.Currency))
}

// Format renders the amount for display, e.g. "£45.00" or "ESP 12.50".
func (m Money) Format() string {
	exp := Exponent(m.Currency)
	text := m.Decimal().StringFixed(exp)
	sym, ok := symbols[m.Currency]
	if !ok {
		return m.Currency + " " + text
	}
	if strings.HasPrefix(text, "-") {
		return "-" + sym + strings.TrimPrefix(text, "-")
	}
	return sym + text
}

func (m Money) String() string {
	return m.Decimal().StringFixed(Exponent(m.Currency)) + " " + m.Currency
}

// Parse converts a major-unit decimal string such as "4.99" into minor units.
func Parse(currency, text string) (Money, error) {
	currency = NormalizeCurrency(currency)
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	exp := Exponent(currency)
	scaled := d.Shift(exp)
	if !scaled.Equal(scaled.Truncate(0)) {
		return Money{}, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, text, exp)
	}
	return Money{Amount: scaled.IntPart(), Currency: currency}, nil
}
