package transport

import (
	"context"

	"storefront/internal/cart"
)

type cartKey struct{}

type sessionKey struct{}

func withCart(ctx context.Context, id string, c *cart.Cart) context.Context {
	ctx = context.WithValue(ctx, sessionKey{}, id)
	return context.WithValue(ctx, cartKey{}, c)
}

func cartFrom(ctx context.Context) *cart.Cart {
	c, _ := ctx.Value(cartKey{}).(*cart.Cart)
	return c
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
