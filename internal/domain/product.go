package domain

import (
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          int             `json:"id" db:"id" validate:"gt=0"`
	Name        string          `json:"name" db:"name" validate:"required"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Images      []string        `json:"images" db:"images"`
	Category    string          `json:"category" db:"category"`
	CategoryID  int             `json:"categoryId" db:"category_id" validate:"gt=0"`
	Colors      []string        `json:"colors,omitempty" db:"colors"`
	InStock     bool            `json:"inStock" db:"in_stock"`
	Rating      *float64        `json:"rating,omitempty" db:"rating" validate:"omitempty,gte=0,lte=5"`
}

// RatingOrZero returns the rating, treating a missing rating as 0.
func (p Product) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// Category represents a product category
type Category struct {
	ID    int    `json:"id" db:"id" validate:"gt=0"`
	Name  string `json:"name" db:"name" validate:"required"`
	Icon  string `json:"icon" db:"icon"`
	Image string `json:"image" db:"image"`
	Color string `json:"color" db:"color"`
}

// Metadata describes a generated catalog document
type Metadata struct {
	TotalProducts int    `json:"totalProducts"`
	GeneratedAt   string `json:"generatedAt"`
	Version       string `json:"version"`
}

// Catalog is the document the store is loaded from: every category and product
// for the current session.
type Catalog struct {
	Categories []Category `json:"categories" validate:"required,min=1,dive"`
	Products   []Product  `json:"products" validate:"required,dive"`
	Metadata   *Metadata  `json:"metadata,omitempty"`
}

// PaginatedResult is one page of a category listing
type PaginatedResult struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	HasMore  bool      `json:"hasMore"`
}

// PriceRange is the cheapest and most expensive price in a product set
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// ProductStats summarizes the loaded catalog
type ProductStats struct {
	Total        int             `json:"total"`
	ByCategory   map[string]int  `json:"byCategory"`
	InStock      int             `json:"inStock"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	PriceRange   PriceRange      `json:"priceRange"`
}
