package cart

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	domcart "example.com/storefront/internal/domain/cart"
	"example.com/storefront/internal/domain/money"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/usecase/pricing"
)

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domproduct.Product, error)
}

type PriceResolver interface {
	Resolve(p *domproduct.Product, currency string) (pricing.Resolution, error)
}

// LineError ties a snapshot failure to one cart line.
type LineError struct {
	Index     int
	ProductID int64
	Err       error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("cart line %d (product %d): %v", e.Index, e.ProductID, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

type Service struct {
	productRepo   ProductRepository
	resolver      PriceResolver
	maxConcurrent int
}

func NewService(productRepo ProductRepository, resolver PriceResolver) *Service {
	return &Service{
		productRepo:   productRepo,
		resolver:      resolver,
		maxConcurrent: 8,
	}
}

func (s *Service) AddToCart(ctx context.Context, c *domcart.Cart, line domcart.Line) error {
	if line.Quantity <= 0 {
		return domcart.ErrInvalidQuantity
	}
	p, err := s.productRepo.GetByID(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return domproduct.ErrProductNotFound
	}

	inCart := line.Quantity
	for _, l := range c.Lines {
		if l.ProductID == line.ProductID {
			inCart += l.Quantity
		}
	}
	if inCart > p.Stock {
		return domproduct.ErrOutOfStock
	}

	c.Add(line)
	return nil
}

func (s *Service) RemoveLine(c *domcart.Cart, index int) error {
	if !c.Remove(index) {
		return domcart.ErrLineNotFound
	}
	return nil
}

// Snapshot prices every cart line in currency. Any line that cannot be priced
// or fulfilled fails the whole snapshot. Stock is checked against the combined
// quantity of all lines for the same product.
func (s *Service) Snapshot(ctx context.Context, c domcart.Cart, currency string) (domcart.Snapshot, error) {
	currency = money.NormalizeCurrency(currency)
	snap := domcart.Snapshot{
		Currency: currency,
		Lines:    make([]domcart.SnapshotLine, len(c.Lines)),
		Subtotal: money.Zero(currency),
	}
	if len(c.Lines) == 0 {
		return snap, nil
	}

	stock := make([]int64, len(c.Lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range c.Lines {
		g.Go(func() error {
			line := c.Lines[idx]
			fail := func(err error) error {
				return &LineError{Index: idx, ProductID: line.ProductID, Err: err}
			}
			if line.Quantity <= 0 {
				return fail(domcart.ErrInvalidQuantity)
			}

			p, err := s.productRepo.GetByID(gctx, line.ProductID)
			if err != nil {
				return fail(err)
			}
			if !p.IsActive {
				return fail(domproduct.ErrProductNotFound)
			}
			stock[idx] = p.Stock

			res, err := s.resolver.Resolve(p, currency)
			if err != nil {
				return fail(err)
			}

			snap.Lines[idx] = domcart.SnapshotLine{
				ProductID:     p.ID,
				Slug:          p.Slug,
				Name:          p.Name,
				Quantity:      line.Quantity,
				Size:          line.Size,
				Color:         line.Color,
				UnitPrice:     res.Price,
				LineTotal:     res.Price.Mul(line.Quantity),
				PriceFallback: res.Fallback,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domcart.Snapshot{}, err
	}

	wanted := make(map[int64]int64, len(c.Lines))
	for idx, line := range c.Lines {
		wanted[line.ProductID] += line.Quantity
		if wanted[line.ProductID] > stock[idx] {
			return domcart.Snapshot{}, &LineError{Index: idx, ProductID: line.ProductID, Err: domproduct.ErrOutOfStock}
		}
	}

	for _, l := range snap.Lines {
		sum, err := snap.Subtotal.Add(l.LineTotal)
		if err != nil {
			return domcart.Snapshot{}, err
		}
		snap.Subtotal = sum
	}
	return snap, nil
}

// IsLineError reports whether err came from a specific cart line.
func IsLineError(err error) (*LineError, bool) {
	var le *LineError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
