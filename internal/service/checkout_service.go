package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cart"
	"storefront/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidCustomer  = errors.New("invalid customer info")
	ErrNegativeShipping = errors.New("shipping cost cannot be negative")
)

// CheckoutService turns a cart into an order draft for the host application.
// Nothing is persisted and the cart is left as it was.
type CheckoutService interface {
	Checkout(ctx context.Context, c *cart.Cart, customer domain.CustomerInfo, shipping decimal.Decimal) (*domain.Order, error)
}

type checkoutService struct {
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(logger *zap.Logger) CheckoutService {
	return &checkoutService{
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Checkout builds a processing order from the current cart snapshot
func (s *checkoutService) Checkout(ctx context.Context, c *cart.Cart, customer domain.CustomerInfo, shipping decimal.Decimal) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(customer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCustomer, err)
	}
	if shipping.IsNegative() {
		return nil, ErrNegativeShipping
	}

	summary := c.Summary()
	if len(summary.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		ID:           uuid.NewString(),
		Items:        summary.Items,
		Total:        summary.Total.Add(shipping),
		Shipping:     shipping,
		CustomerInfo: customer,
		Status:       domain.OrderStatusProcessing,
		Date:         s.now().UTC(),
	}

	s.logger.Info("Order draft created",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Items)),
		zap.Int("items", summary.Count),
		zap.String("total", order.Total.StringFixed(2)),
	)

	return order, nil
}
