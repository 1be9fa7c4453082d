package catalog

import (
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// Criteria narrows a product list. Nil and false fields impose no constraint;
// the rest are ANDed together. Bounds are inclusive.
type Criteria struct {
	InStock    bool
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinRating  *float64
	CategoryID *int
}

// Filter returns the products matching c, preserving input order
func Filter(products []domain.Product, c Criteria) []domain.Product {
	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if c.matches(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (c Criteria) matches(p domain.Product) bool {
	if c.InStock && !p.InStock {
		return false
	}
	if c.MinPrice != nil && p.Price.LessThan(*c.MinPrice) {
		return false
	}
	if c.MaxPrice != nil && p.Price.GreaterThan(*c.MaxPrice) {
		return false
	}
	if c.MinRating != nil && p.RatingOrZero() < *c.MinRating {
		return false
	}
	if c.CategoryID != nil && p.CategoryID != *c.CategoryID {
		return false
	}
	return true
}

const (
	// HighRatedThreshold is the minimum rating for the "high rated" toggle
	HighRatedThreshold = 4.0
)

// UnderPriceLimit is the exclusive price ceiling for the "under price" toggle
var UnderPriceLimit = decimal.NewFromInt(50)

// QuickFilter is the set of toggles shown on a category listing
type QuickFilter struct {
	InStock    bool
	HighRated  bool
	UnderPrice bool
}

// Apply returns the products passing every enabled toggle
func (q QuickFilter) Apply(products []domain.Product) []domain.Product {
	c := Criteria{InStock: q.InStock}
	if q.HighRated {
		threshold := HighRatedThreshold
		c.MinRating = &threshold
	}

	filtered := Filter(products, c)
	if !q.UnderPrice {
		return filtered
	}

	cheap := filtered[:0]
	for _, p := range filtered {
		if p.Price.LessThan(UnderPriceLimit) {
			cheap = append(cheap, p)
		}
	}
	return cheap
}
