package catalog

import (
	"fmt"
	"testing"

	"storefront/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"price-low":  SortPriceLow,
		"price-high": SortPriceHigh,
		"rating":     SortRating,
		"name":       SortName,
		"newest":     SortNewest,
		"default":    SortDefault,
		"":           SortDefault,
		"popular":    SortDefault,
	}
	for in, want := range tests {
		if got := ParseSortKey(in); got != want {
			t.Errorf("ParseSortKey(%q) = %q, want %q", in, got, want)
		}
	}
}

// Feature: storefront, Property 5: Default sort is the identity permutation
func TestProperty_DefaultSortIsIdentity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("default and unknown keys keep input order", prop.ForAll(
		func(seeds []int, key string) bool {
			products := productsFromSeeds(seeds)
			return sameIDs(Sort(products, ParseSortKey(key)), products)
		},
		gen.SliceOf(gen.IntRange(0, 10000)),
		gen.OneConstOf("default", "", "bogus"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 6: Price sorts are monotonic
func TestProperty_PriceSortsAreMonotonic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("price-low is non-decreasing and price-high non-increasing", prop.ForAll(
		func(seeds []int) bool {
			products := productsFromSeeds(seeds)

			low := Sort(products, SortPriceLow)
			high := Sort(products, SortPriceHigh)
			if len(low) != len(products) || len(high) != len(products) {
				return false
			}

			for i := 1; i < len(low); i++ {
				if low[i-1].Price.GreaterThan(low[i].Price) {
					t.Logf("FAIL: price-low out of order at %d: %s > %s", i, low[i-1].Price, low[i].Price)
					return false
				}
				if high[i-1].Price.LessThan(high[i].Price) {
					t.Logf("FAIL: price-high out of order at %d: %s < %s", i, high[i-1].Price, high[i].Price)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 10000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	products := []domain.Product{testProduct(1, 1, "3"), testProduct(2, 1, "1"), testProduct(3, 1, "2")}

	sorted := Sort(products, SortPriceLow)

	if fmt.Sprint(ids(products)) != "[1 2 3]" {
		t.Errorf("input was reordered: %v", ids(products))
	}
	if fmt.Sprint(ids(sorted)) != "[2 3 1]" {
		t.Errorf("price-low = %v, want [2 3 1]", ids(sorted))
	}
}

func TestSortRatingTreatsMissingAsZero(t *testing.T) {
	a := testProduct(1, 1, "1")
	b := testProduct(2, 1, "1")
	b.Rating = ratingPtr(3.5)
	c := testProduct(3, 1, "1")
	c.Rating = ratingPtr(0)
	d := testProduct(4, 1, "1")
	d.Rating = ratingPtr(4.8)

	got := ids(Sort([]domain.Product{a, b, c, d}, SortRating))
	if fmt.Sprint(got) != "[4 2 1 3]" {
		t.Errorf("rating sort = %v, want [4 2 1 3]", got)
	}
}

func TestSortNewestByIDDescending(t *testing.T) {
	products := []domain.Product{testProduct(5, 1, "1"), testProduct(9, 1, "1"), testProduct(2, 1, "1")}

	got := ids(Sort(products, SortNewest))
	if fmt.Sprint(got) != "[9 5 2]" {
		t.Errorf("newest sort = %v, want [9 5 2]", got)
	}
}

func TestSortNameUsesCollation(t *testing.T) {
	names := []string{"banana", "Apple", "cherry", "apple", "Éclair"}
	products := make([]domain.Product, len(names))
	for i, n := range names {
		products[i] = testProduct(i+1, 1, "1")
		products[i].Name = n
	}

	sorted := Sort(products, SortName)

	got := make([]string, len(sorted))
	for i, p := range sorted {
		got[i] = p.Name
	}

	// byte order would put "Apple" and "Éclair" at the extremes
	want := []string{"apple", "Apple", "banana", "cherry", "Éclair"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("name sort = %v, want %v", got, want)
	}
}

func TestSortNameCyrillicLocale(t *testing.T) {
	names := []string{"Наушники", "Чехлы", "Зарядчики", "Кабелы"}
	products := make([]domain.Product, len(names))
	for i, n := range names {
		products[i] = testProduct(i+1, 1, "1")
		products[i].Name = n
	}

	sorted := SortLocale(products, SortName, language.Russian)

	got := make([]string, len(sorted))
	for i, p := range sorted {
		got[i] = p.Name
	}
	want := []string{"Зарядчики", "Кабелы", "Наушники", "Чехлы"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("russian name sort = %v, want %v", got, want)
	}
}

func TestSortPriceIsStable(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Price: decimal.NewFromInt(5)},
		{ID: 2, Price: decimal.NewFromInt(1)},
		{ID: 3, Price: decimal.NewFromInt(5)},
		{ID: 4, Price: decimal.NewFromInt(1)},
	}

	if got := ids(Sort(products, SortPriceLow)); fmt.Sprint(got) != "[2 4 1 3]" {
		t.Errorf("stable price-low = %v, want [2 4 1 3]", got)
	}
	if got := ids(Sort(products, SortPriceHigh)); fmt.Sprint(got) != "[1 3 2 4]" {
		t.Errorf("stable price-high = %v, want [1 3 2 4]", got)
	}
}
