package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	domproduct "example.com/storefront/internal/domain/product"
)

// ProductRepository serves the product catalog from a JSON file. The file is
// either an array of products or an object with a "products" array.
type ProductRepository struct {
	path string

	mu       sync.RWMutex
	products map[int64]*domproduct.Product
	order    []int64
}

func Load(path string) (*ProductRepository, error) {
	r := &ProductRepository{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewProductRepository builds a catalog from products already in memory.
func NewProductRepository(products []*domproduct.Product) (*ProductRepository, error) {
	r := &ProductRepository{}
	if err := r.replace(products); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the catalog file; the previous catalog stays in place on error.
func (r *ProductRepository) Reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	products, err := decode(raw)
	if err != nil {
		return fmt.Errorf("decode catalog %s: %w", r.path, err)
	}
	return r.replace(products)
}

func decode(raw []byte) ([]*domproduct.Product, error) {
	raw = bytes.TrimSpace(raw)
	var products []*domproduct.Product
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, err
		}
		return products, nil
	}
	var doc struct {
		Products []*domproduct.Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Products, nil
}

func (r *ProductRepository) replace(products []*domproduct.Product) error {
	byID := make(map[int64]*domproduct.Product, len(products))
	order := make([]int64, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if _, dup := byID[p.ID]; dup {
			return fmt.Errorf("duplicate product id %d", p.ID)
		}
		normalized := make(map[string]int64, len(p.Prices))
		for c, amount := range p.Prices {
			normalized[strings.ToUpper(strings.TrimSpace(c))] = amount
		}
		p.Prices = normalized
		byID[p.ID] = p
		order = append(order, p.ID)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	r.mu.Lock()
	r.products = byID
	r.order = order
	r.mu.Unlock()
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domproduct.ErrProductNotFound
	}
	return clone(p), nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domproduct.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := r.products[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", domproduct.ErrProductNotFound, id)
		}
		out = append(out, clone(p))
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domproduct.Product, 0, len(r.order))
	for _, id := range r.order {
		p := r.products[id]
		if filter.OnlyActive && !p.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Slug), search) {
			continue
		}
		out = append(out, clone(p))
	}
	return out, nil
}

func clone(p *domproduct.Product) *domproduct.Product {
	cp := *p
	if p.Prices != nil {
		cp.Prices = make(map[string]int64, len(p.Prices))
		for k, v := range p.Prices {
			cp.Prices[k] = v
		}
	}
	if p.BasePrice != nil {
		base := *p.BasePrice
		cp.BasePrice = &base
	}
	return &cp
}
