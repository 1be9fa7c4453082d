package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func testProduct(id int, price string) *domain.Product {
	return &domain.Product{
		ID:         id,
		Name:       fmt.Sprintf("Product %d", id),
		Price:      decimal.RequireFromString(price),
		Category:   "Cases",
		CategoryID: 1,
		InStock:    true,
	}
}

func receive(t *testing.T, ch <-chan []domain.CartLine) []domain.CartLine {
	t.Helper()
	select {
	case lines, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return lines
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cart snapshot")
	}
	return nil
}

func TestAddToCartMergesSameLine(t *testing.T) {
	c := New(zap.NewNop())
	p := testProduct(7, "10.00")

	if err := c.AddToCart(p, 2, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.AddToCart(p, 3, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", lines[0].Quantity)
	}
}

func TestAddToCartSeparatesColors(t *testing.T) {
	c := New(zap.NewNop())
	p := testProduct(7, "10.00")

	_ = c.AddToCart(p, 1, "red")
	_ = c.AddToCart(p, 1, "blue")

	if n := len(c.Lines()); n != 2 {
		t.Fatalf("expected 2 lines for distinct colors, got %d", n)
	}
	if c.ItemsCount() != 2 {
		t.Errorf("expected 2 items, got %d", c.ItemsCount())
	}
}

func TestAddToCartRejectsInvalidInput(t *testing.T) {
	c := New(zap.NewNop())

	if err := c.AddToCart(nil, 1, ""); err != ErrInvalidProduct {
		t.Errorf("expected ErrInvalidProduct, got %v", err)
	}
	if err := c.AddToCart(testProduct(1, "1"), 0, ""); err != ErrInvalidQuantity {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := c.AddToCart(testProduct(1, "1"), -3, ""); err != ErrInvalidQuantity {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if len(c.Lines()) != 0 {
		t.Error("rejected adds must not change the cart")
	}
}

func TestUpdateQuantity(t *testing.T) {
	c := New(zap.NewNop())
	p := testProduct(3, "4.50")
	_ = c.AddToCart(p, 1, "black")

	c.UpdateQuantity(3, 4, "black")
	if got := c.Lines()[0].Quantity; got != 4 {
		t.Errorf("expected quantity 4, got %d", got)
	}

	c.UpdateQuantity(3, 9, "white")
	if got := c.Lines()[0].Quantity; got != 4 {
		t.Errorf("update of a missing line changed quantity to %d", got)
	}

	c.UpdateQuantity(3, 0, "black")
	if n := len(c.Lines()); n != 0 {
		t.Errorf("quantity 0 should remove the line, %d left", n)
	}
}

func TestRemoveFromCart(t *testing.T) {
	c := New(zap.NewNop())
	_ = c.AddToCart(testProduct(1, "1"), 1, "")
	_ = c.AddToCart(testProduct(2, "1"), 1, "")

	c.RemoveFromCart(1, "")
	c.RemoveFromCart(99, "")

	lines := c.Lines()
	if len(lines) != 1 || lines[0].Product.ID != 2 {
		t.Errorf("expected only product 2 left, got %+v", lines)
	}
}

func TestTotalIsExact(t *testing.T) {
	c := New(zap.NewNop())
	_ = c.AddToCart(testProduct(1, "19.99"), 2, "")
	_ = c.AddToCart(testProduct(2, "59.99"), 1, "")

	if !c.Total().Equal(decimal.RequireFromString("99.97")) {
		t.Errorf("expected total 99.97, got %s", c.Total())
	}
	if c.ItemsCount() != 3 {
		t.Errorf("expected 3 items, got %d", c.ItemsCount())
	}

	c.Clear()
	if !c.Total().IsZero() || c.ItemsCount() != 0 {
		t.Errorf("cleared cart should be empty, total=%s count=%d", c.Total(), c.ItemsCount())
	}
}

func TestSubscribeReplaysLatest(t *testing.T) {
	c := New(zap.NewNop())
	_ = c.AddToCart(testProduct(1, "5"), 2, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := c.Subscribe(ctx)
	if lines := receive(t, ch); len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("expected replay of current cart, got %+v", lines)
	}

	c.RemoveFromCart(1, "")
	if lines := receive(t, ch); len(lines) != 0 {
		t.Errorf("expected empty snapshot after removal, got %+v", lines)
	}
}

func TestPublishedSnapshotsAreIsolated(t *testing.T) {
	c := New(zap.NewNop())
	_ = c.AddToCart(testProduct(1, "5"), 1, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshot := receive(t, c.Subscribe(ctx))
	_ = c.AddToCart(testProduct(1, "5"), 4, "")

	if snapshot[0].Quantity != 1 {
		t.Errorf("published snapshot changed after mutation: quantity %d", snapshot[0].Quantity)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(nil)
	if s.Items == nil || s.Count != 0 || !s.Total.IsZero() {
		t.Errorf("unexpected empty summary: %+v", s)
	}

	c := New(zap.NewNop())
	_ = c.AddToCart(testProduct(1, "2.50"), 4, "")
	s = c.Summary()
	if s.Count != 4 || !s.Total.Equal(decimal.NewFromInt(10)) {
		t.Errorf("unexpected summary: count=%d total=%s", s.Count, s.Total)
	}
}

// Feature: storefront, Property 9: The cart never holds two lines for the same product and color
func TestProperty_NoDuplicateLines(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("lines stay unique and quantities add up", prop.ForAll(
		func(ops []int) bool {
			c := New(zap.NewNop())
			colors := []string{"", "red", "blue"}
			products := map[int]*domain.Product{}
			expected := 0

			for _, op := range ops {
				id := op%4 + 1
				if products[id] == nil {
					products[id] = testProduct(id, "1.25")
				}
				qty := op%3 + 1
				if err := c.AddToCart(products[id], qty, colors[op%len(colors)]); err != nil {
					return false
				}
				expected += qty
			}

			seen := map[string]bool{}
			for _, l := range c.Lines() {
				key := fmt.Sprintf("%d/%s", l.Product.ID, l.SelectedColor)
				if seen[key] {
					t.Logf("FAIL: duplicate line %s", key)
					return false
				}
				seen[key] = true
			}
			return c.ItemsCount() == expected &&
				c.Total().Equal(decimal.RequireFromString("1.25").Mul(decimal.NewFromInt(int64(expected))))
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
