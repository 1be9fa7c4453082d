package catalog

import (
	"slices"
	"strings"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// Categories returns every category in snapshot order
func (s *Store) Categories() []domain.Category {
	return slices.Clone(s.current().categories)
}

// Products returns every product in snapshot order
func (s *Store) Products() []domain.Product {
	return slices.Clone(s.current().products)
}

// ByCategory returns the products of one category in snapshot order
func (s *Store) ByCategory(categoryID int) []domain.Product {
	return byCategory(s.current().products, categoryID)
}

func byCategory(products []domain.Product, categoryID int) []domain.Product {
	result := []domain.Product{}
	for _, p := range products {
		if p.CategoryID == categoryID {
			result = append(result, p)
		}
	}
	return result
}

// Paginated returns page (zero-based) of a category listing.
// HasMore is computed against the category's product count.
func (s *Store) Paginated(categoryID, page, pageSize int) domain.PaginatedResult {
	matching := s.ByCategory(categoryID)
	total := len(matching)

	if page < 0 || pageSize <= 0 {
		return domain.PaginatedResult{Products: []domain.Product{}, Total: total}
	}

	if total == 0 || page > (total-1)/pageSize {
		return domain.PaginatedResult{Products: []domain.Product{}, Total: total}
	}

	// page is bounded by the division above, so the product cannot overflow
	start := page * pageSize
	end := start + min(pageSize, total-start)

	return domain.PaginatedResult{
		Products: slices.Clone(matching[start:end]),
		Total:    total,
		HasMore:  end < total,
	}
}

// Search matches query case-insensitively against name, description and
// category name. A blank query returns the whole (optionally filtered) set.
func (s *Store) Search(query string, categoryID *int) []domain.Product {
	products := s.current().products
	if categoryID != nil {
		products = byCategory(products, *categoryID)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return slices.Clone(products)
	}

	result := []domain.Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			result = append(result, p)
		}
	}
	return result
}

// ByID looks up a single product
func (s *Store) ByID(id int) (domain.Product, bool) {
	snap := s.current()
	i, ok := snap.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return snap.products[i], true
}

// ProductRef returns a pointer into the current snapshot. The product must be
// treated as read-only; it stays valid after a reload replaces the snapshot.
func (s *Store) ProductRef(id int) (*domain.Product, bool) {
	snap := s.current()
	i, ok := snap.byID[id]
	if !ok {
		return nil, false
	}
	return &snap.products[i], true
}

// Related picks up to limit random products from the same category, excluding id
func (s *Store) Related(id, limit int) []domain.Product {
	current, ok := s.ByID(id)
	if !ok || limit <= 0 {
		return []domain.Product{}
	}

	candidates := []domain.Product{}
	for _, p := range s.current().products {
		if p.CategoryID == current.CategoryID && p.ID != id {
			candidates = append(candidates, p)
		}
	}

	s.rngMu.Lock()
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	s.rngMu.Unlock()

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// FeaturedMinRating is the rating threshold for featured products
const FeaturedMinRating = 4.5

// Featured returns in-stock products rated at least FeaturedMinRating, best first
func (s *Store) Featured(limit int) []domain.Product {
	if limit <= 0 {
		return []domain.Product{}
	}

	featured := []domain.Product{}
	for _, p := range s.current().products {
		if p.InStock && p.RatingOrZero() >= FeaturedMinRating {
			featured = append(featured, p)
		}
	}

	featured = Sort(featured, SortRating)
	if len(featured) > limit {
		featured = featured[:limit]
	}
	return featured
}

// Stats summarizes the current snapshot
func (s *Store) Stats() domain.ProductStats {
	snap := s.current()

	stats := domain.ProductStats{
		Total:        len(snap.products),
		ByCategory:   make(map[string]int, len(snap.categories)),
		AveragePrice: decimal.Zero,
	}

	perCategory := make(map[int]int)
	sum := decimal.Zero
	for i, p := range snap.products {
		perCategory[p.CategoryID]++
		if p.InStock {
			stats.InStock++
		}
		sum = sum.Add(p.Price)

		if i == 0 || p.Price.LessThan(stats.PriceRange.Min) {
			stats.PriceRange.Min = p.Price
		}
		if i == 0 || p.Price.GreaterThan(stats.PriceRange.Max) {
			stats.PriceRange.Max = p.Price
		}
	}

	for _, c := range snap.categories {
		stats.ByCategory[c.Name] = perCategory[c.ID]
	}

	if len(snap.products) > 0 {
		stats.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(snap.products)))).Round(2)
	}

	return stats
}
