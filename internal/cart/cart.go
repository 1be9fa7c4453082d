package cart

import (
	"context"
	"errors"
	"slices"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/pubsub"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidProduct  = errors.New("product is required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Cart holds the lines a shopper has selected. At most one line exists per
// (product id, color) pair. Every mutation publishes a fresh copy of the lines.
type Cart struct {
	mu     sync.RWMutex
	lines  []domain.CartLine
	items  *pubsub.Subject[[]domain.CartLine]
	logger *zap.Logger
}

// New creates an empty cart
func New(logger *zap.Logger) *Cart {
	return &Cart{
		lines:  []domain.CartLine{},
		items:  pubsub.NewSubject([]domain.CartLine{}),
		logger: logger,
	}
}

// AddToCart adds quantity of product in color ("" for none). An existing line
// for the same pair is incremented instead of duplicated.
func (c *Cart) AddToCart(product *domain.Product, quantity int, color string) error {
	if product == nil {
		return ErrInvalidProduct
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(product.ID, color); i >= 0 {
		c.lines[i].Quantity += quantity
	} else {
		c.lines = append(c.lines, domain.CartLine{
			Product:       product,
			Quantity:      quantity,
			SelectedColor: color,
		})
	}

	c.logger.Debug("Cart line added",
		zap.Int("product_id", product.ID),
		zap.Int("quantity", quantity),
		zap.String("color", color),
	)
	c.publishLocked()
	return nil
}

// RemoveFromCart deletes the line for the pair, if any
func (c *Cart) RemoveFromCart(productID int, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(productID, color)
	c.publishLocked()
}

// UpdateQuantity sets the quantity of an existing line. Missing lines are
// ignored; a quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(productID, quantity int, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(productID, color)
	if i < 0 {
		return
	}

	if quantity <= 0 {
		c.removeLocked(productID, color)
	} else {
		c.lines[i].Quantity = quantity
	}
	c.publishLocked()
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = []domain.CartLine{}
	c.publishLocked()
}

// Total is the exact sum of price * quantity over all lines
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return total(c.lines)
}

// ItemsCount is the sum of quantities across lines
func (c *Cart) ItemsCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return count(c.lines)
}

// Lines returns a copy of the current lines
func (c *Cart) Lines() []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.lines)
}

// Subscribe streams the lines, starting with the current snapshot
func (c *Cart) Subscribe(ctx context.Context) <-chan []domain.CartLine {
	return c.items.Subscribe(ctx)
}

func (c *Cart) indexLocked(productID int, color string) int {
	return slices.IndexFunc(c.lines, func(l domain.CartLine) bool {
		return l.Matches(productID, color)
	})
}

func (c *Cart) removeLocked(productID int, color string) {
	c.lines = slices.DeleteFunc(c.lines, func(l domain.CartLine) bool {
		return l.Matches(productID, color)
	})
}

// publishLocked hands subscribers their own copy so later mutations never
// show through a published snapshot.
func (c *Cart) publishLocked() {
	c.items.Publish(slices.Clone(c.lines))
}

// Summary is a cart snapshot with its derived totals
type Summary struct {
	Items []domain.CartLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

// Summarize computes totals for a snapshot of lines
func Summarize(lines []domain.CartLine) Summary {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return Summary{
		Items: lines,
		Total: total(lines),
		Count: count(lines),
	}
}

// Summary returns the current lines and totals from a single consistent read
func (c *Cart) Summary() Summary {
	return Summarize(c.Lines())
}

func total(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func count(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
