package product

import "example.com/storefront/internal/domain/money"

type Product struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
	// Prices maps currency code to minor-unit price and may be sparse.
	Prices map[string]int64 `json:"prices,omitempty"`
	// BasePrice is the legacy single price field, in no particular currency.
	BasePrice *int64 `json:"price,omitempty"`
	IsActive  bool   `json:"is_active"`
}

// PriceIn returns the explicit price for currency, if the catalog carries one.
func (p *Product) PriceIn(currency string) (money.Money, bool) {
	currency = money.NormalizeCurrency(currency)
	amount, ok := p.Prices[currency]
	if !ok {
		return money.Money{}, false
	}
	return money.New(amount, currency), true
}

type ListFilter struct {
	Search     string
	OnlyActive bool
}
