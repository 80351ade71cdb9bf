package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd_SameCurrency(t *testing.T) {
	sum, err := New(4500, "gbp").Add(New(499, GBP))
	require.NoError(t, err)
	require.Equal(t, Money{Amount: 4999, Currency: GBP}, sum)
}

func TestAdd_CurrencyMismatch(t *testing.T) {
	_, err := New(100, GBP).Add(New(100, USD))
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   Money
		want string
	}{
		{name: "GBP", in: New(4500, GBP), want: "£45.00"},
		{name: "USD cents", in: New(499, USD), want: "$4.99"},
		{name: "NGN", in: New(250000, NGN), want: "₦2500.00"},
		{name: "ESP has no symbol", in: New(1250, ESP), want: "ESP 12.50"},
		{name: "zero", in: Zero(EUR), want: "€0.00"},
		{name: "negative", in: New(-150, GBP), want: "-£1.50"},
		{name: "zero decimal currency", in: New(1200, "JPY"), want: "JPY 1200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.Format())
		})
	}
}

func TestParse(t *testing.T) {
	m, err := Parse("gbp", "4.99")
	require.NoError(t, err)
	require.Equal(t, New(499, GBP), m)

	m, err = Parse(USD, "50")
	require.NoError(t, err)
	require.Equal(t, int64(5000), m.Amount)

	_, err = Parse(GBP, "4.999")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Parse(GBP, "abc")
	require.ErrorIs(t, err, ErrInvalidAmount)
}
