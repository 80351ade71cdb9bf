package money

const (
	GBP = "GBP"
	USD = "USD"
	EUR = "EUR"
	NGN = "NGN"
	// ESP is the storefront's token currency, settled only through espees.
	ESP = "ESP"
)

var symbols = map[string]string{
	GBP: "£",
	USD: "$",
	EUR: "€",
	NGN: "₦",
}

var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
}

// Exponent returns the number of minor-unit digits for a currency.
func Exponent(currency string) int32 {
	if zeroDecimal[NormalizeCurrency(currency)] {
		return 0
	}
	return 2
}
