package pricing

import (
	"fmt"
	"log/slog"
	"strings"

	"example.com/storefront/internal/domain/money"
	domproduct "example.com/storefront/internal/domain/product"
)

// FallbackPolicy controls what happens when a product has no price in the
// requested currency but carries a legacy base price.
type FallbackPolicy string

const (
	// FallbackAllow reuses the base price tagged with the requested currency, silently.
	FallbackAllow FallbackPolicy = "allow"
	// FallbackWarn does the same as FallbackAllow and logs a warning.
	FallbackWarn FallbackPolicy = "warn"
	// FallbackDeny treats the product as not priced.
	FallbackDeny FallbackPolicy = "deny"
)

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case FallbackAllow, FallbackWarn, FallbackDeny:
		return p, nil
	case "":
		return FallbackWarn, nil
	default:
		return "", fmt.Errorf("unknown price fallback policy %q", s)
	}
}

type Resolution struct {
	Price    money.Money
	Fallback bool
}

type Resolver struct {
	policy FallbackPolicy
	logger *slog.Logger
}

func NewResolver(policy FallbackPolicy, logger *slog.Logger) *Resolver {
	if policy == "" {
		policy = FallbackWarn
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{policy: policy, logger: logger}
}

// Resolve returns the unit price of p in currency. The base-price fallback is a raw
// number relabelled with the caller's currency, not a conversion.
func (r *Resolver) Resolve(p *domproduct.Product, currency string) (Resolution, error) {
	currency = money.NormalizeCurrency(currency)
	if price, ok := p.PriceIn(currency); ok {
		return Resolution{Price: price}, nil
	}
	if p.BasePrice == nil || r.policy == FallbackDeny {
		return Resolution{}, fmt.Errorf("%w: product %d in %s", domproduct.ErrNotPriced, p.ID, currency)
	}
	if r.policy == FallbackWarn {
		r.logger.Warn("price fallback to base price",
			slog.Int64("product_id", p.ID),
			slog.String("requested_currency", currency),
			slog.Int64("base_price", *p.BasePrice),
		)
	}
	return Resolution{Price: money.New(*p.BasePrice, currency), Fallback: true}, nil
}
