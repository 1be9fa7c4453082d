package transport

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func ratingPtr(v float64) *float64 {
	return &v
}

func testDocument() *domain.Catalog {
	product := func(id, categoryID int, name, price string, inStock bool, rating *float64) domain.Product {
		category := map[int]string{1: "Cases", 2: "Chargers"}[categoryID]
		return domain.Product{
			ID:          id,
			Name:        name,
			Description: name + " description",
			Price:       decimal.RequireFromString(price),
			Images:      []string{"https://example.com/" + name + ".jpg"},
			Category:    category,
			CategoryID:  categoryID,
			InStock:     inStock,
			Rating:      rating,
		}
	}

	return &domain.Catalog{
		Categories: []domain.Category{
			{ID: 1, Name: "Cases", Icon: "📱", Color: "#FEF3E2"},
			{ID: 2, Name: "Chargers", Icon: "🔌", Color: "#E8F5E8"},
		},
		Products: []domain.Product{
			product(1, 1, "Leather Case", "19.99", true, ratingPtr(4.7)),
			product(2, 1, "Clear Case", "9.99", true, ratingPtr(3.9)),
			product(3, 1, "Armor Case", "59.99", true, ratingPtr(4.9)),
			product(4, 1, "Wallet Case", "24.50", false, ratingPtr(4.8)),
			product(5, 2, "USB-C Charger", "29.00", true, nil),
		},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *catalog.Store, *cart.Registry) {
	t.Helper()
	doc := testDocument()
	store := catalog.NewStore(catalog.SourceFunc(func(ctx context.Context) (*domain.Catalog, error) {
		return doc, nil
	}), zap.NewNop(), catalog.WithRand(rand.New(rand.NewSource(1))))

	select {
	case <-store.Load(context.Background()):
	case <-time.After(2 * time.Second):
		t.Fatal("timed out loading catalog")
	}

	registry := cart.NewRegistry(zap.NewNop())
	router := chi.NewRouter()
	NewCatalogHandler(store, zap.NewNop()).RegisterRoutes(router)
	NewCartHandler(registry, store, service.NewCheckoutService(zap.NewNop()), zap.NewNop()).RegisterRoutes(router)
	return router, store, registry
}

func do(t *testing.T, h http.Handler, method, target, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(middleware.CartSessionHeader, session)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return v
}

func productIDs(products []domain.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
