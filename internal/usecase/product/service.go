package product

import (
	"context"
	"errors"

	"example.com/storefront/internal/domain/money"
	dom "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/usecase/pricing"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*dom.Product, error)
	List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error)
}

type PriceResolver interface {
	Resolve(p *dom.Product, currency string) (pricing.Resolution, error)
}

// Listing is a product as shown to a shopper browsing in one currency.
// Price is nil when the product cannot be sold in that currency.
type Listing struct {
	Product       *dom.Product
	Price         *money.Money
	PriceFallback bool
}

type Service struct {
	repo     Repository
	resolver PriceResolver
}

func NewService(repo Repository, resolver PriceResolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter, currency string) ([]Listing, error) {
	filter.OnlyActive = true
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, len(products))
	for _, p := range products {
		l, err := s.listing(p, currency)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id int64, currency string) (Listing, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if !p.IsActive {
		return Listing{}, dom.ErrProductNotFound
	}
	return s.listing(p, currency)
}

func (s *Service) listing(p *dom.Product, currency string) (Listing, error) {
	res, err := s.resolver.Resolve(p, currency)
	if errors.Is(err, dom.ErrNotPriced) {
		return Listing{Product: p}, nil
	}
	if err != nil {
		return Listing{}, err
	}
	price := res.Price
	return Listing{Product: p, Price: &price, PriceFallback: res.Fallback}, nil
}
