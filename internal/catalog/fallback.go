package catalog

import (
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Fallback returns the built-in catalog installed when the real one cannot be loaded
func Fallback() *domain.Catalog {
	rating := 4.5
	return &domain.Catalog{
		Categories: []domain.Category{
			{ID: 1, Name: "Чехлы", Icon: "📱", Color: "#FEF3E2"},
			{ID: 2, Name: "Зарядчики", Icon: "🔌", Color: "#E8F5E8"},
			{ID: 3, Name: "Наушники", Icon: "🎧", Color: "#FFE5CC"},
			{ID: 4, Name: "Защитники", Icon: "🛡️", Color: "#F0F8FF"},
			{ID: 5, Name: "Кабелы", Icon: "🔌", Color: "#1F2937"},
			{ID: 6, Name: "Power bank", Icon: "🔋", Color: "#FFD4B3"},
		},
		Products: []domain.Product{
			{
				ID:          1,
				Name:        "iPhone 15 Pro Case",
				Description: "Premium case for iPhone 15 Pro",
				Price:       decimal.RequireFromString("29.99"),
				Images:      []string{"https://images.unsplash.com/photo-1601784551446-20c9e07cdbdb?w=400&h=400&fit=crop"},
				Category:    "Cases",
				CategoryID:  1,
				Colors:      []string{"#000000", "#4F46E5"},
				InStock:     true,
				Rating:      &rating,
			},
		},
	}
}

// Validate checks a catalog document before it is installed
func Validate(doc *domain.Catalog) error {
	if doc == nil {
		return ErrNilCatalog
	}

	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("invalid catalog document: %w", err)
	}

	var errs []error
	seen := make(map[int]bool, len(doc.Products))
	for _, p := range doc.Products {
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("duplicate product id %d", p.ID))
		}
		seen[p.ID] = true

		if p.Price.IsNegative() {
			errs = append(errs, fmt.Errorf("product %d has negative price %s", p.ID, p.Price))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog document: %w", errors.Join(errs...))
	}
	return nil
}
