// internal/infrastructure/database/redis/cart_persister.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atelier-textile/storefront-api/internal/domain/cart"
)

// CartPersister stores session carts as JSON documents
type CartPersister struct {
	client *Client
	ttl    time.Duration
}

// NewCartPersister creates a cart persister. Carts expire ttl after their
// last change.
func NewCartPersister(client *Client, ttl time.Duration) *CartPersister {
	return &CartPersister{client: client, ttl: ttl}
}

// CartKey returns the key holding a session cart
func CartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Load returns the lines of a session cart; a missing cart is empty
func (p *CartPersister) Load(ctx context.Context, sessionID string) ([]cart.Item, error) {
	var items []cart.Item
	if err := p.client.GetJSON(ctx, CartKey(sessionID), &items); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

// Save replaces the lines of a session cart
func (p *CartPersister) Save(ctx context.Context, sessionID string, items []cart.Item) error {
	if len(items) == 0 {
		return p.Delete(ctx, sessionID)
	}
	if err := p.client.SetJSON(ctx, CartKey(sessionID), items, p.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes a session cart
func (p *CartPersister) Delete(ctx context.Context, sessionID string) error {
	if err := p.client.Del(ctx, CartKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
