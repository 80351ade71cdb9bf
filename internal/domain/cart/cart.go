package cart

import "example.com/storefront/internal/domain/money"

type Line struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Cart is owned by a single session.
type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Add merges quantity into an existing line with the same product and options.
func (c *Cart) Add(line Line) {
	for i := range c.Lines {
		l := &c.Lines[i]
		if l.ProductID == line.ProductID && l.Size == line.Size && l.Color == line.Color {
			l.Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.Lines) {
		return false
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c Cart) Clone() Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

type SnapshotLine struct {
	ProductID int64       `json:"product_id"`
	Slug      string      `json:"slug"`
	Name      string      `json:"name"`
	Quantity  int64       `json:"quantity"`
	Size      string      `json:"size,omitempty"`
	Color     string      `json:"color,omitempty"`
	UnitPrice money.Money `json:"unit_price"`
	LineTotal money.Money `json:"line_total"`
	// PriceFallback marks a unit price taken from the legacy base price.
	PriceFallback bool `json:"price_fallback,omitempty"`
}

// Snapshot is an itemised, priced view of a cart in one currency.
type Snapshot struct {
	Currency string         `json:"currency"`
	Lines    []SnapshotLine `json:"lines"`
	Subtotal money.Money    `json:"subtotal"`
}

func (s *Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
