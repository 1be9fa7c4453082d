package catalog

import (
	"cmp"
	"slices"

	"storefront/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects a product ordering
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps a query value to a SortKey; unknown values map to SortDefault
func ParseSortKey(v string) SortKey {
	switch key := SortKey(v); key {
	case SortPriceLow, SortPriceHigh, SortRating, SortName, SortNewest:
		return key
	default:
		return SortDefault
	}
}

// Sort returns a stably sorted copy of products. Name ordering uses English
// collation; see SortLocale for other locales.
func Sort(products []domain.Product, key SortKey) []domain.Product {
	return SortLocale(products, key, language.English)
}

// SortLocale is Sort with an explicit collation locale for SortName
func SortLocale(products []domain.Product, key SortKey, locale language.Tag) []domain.Product {
	sorted := slices.Clone(products)

	switch key {
	case SortPriceLow:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortRating:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(b.RatingOrZero(), a.RatingOrZero())
		})
	case SortName:
		// collate.Collator keeps scratch buffers, so each call gets its own
		c := collate.New(locale)
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortNewest:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(b.ID, a.ID)
		})
	}

	return sorted
}
