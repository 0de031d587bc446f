// internal/domain/order/repository.go
package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrNoItems           = errors.New("order has no items")
	ErrInvalidTransition = errors.New("order status transition not allowed")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// ListFilter narrows order listings
type ListFilter struct {
	Status Status
	UserID *uuid.UUID
	Offset int
	Limit  int
}

// Mutator changes an order in place and reports whether it must be saved
type Mutator func(o *Order) (bool, error)

// Repository persists orders
type Repository interface {
	// CreateWithItems writes the order and its items in one transaction
	CreateWithItems(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*Order, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*Order, error)
	// Update runs fn on the row-locked order and saves it together with
	// its pending history when fn reports a change
	Update(ctx context.Context, id uuid.UUID, fn Mutator) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int64, error)
}
