// internal/infrastructure/database/postgres/order_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository is the gorm implementation of order.Repository
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithItems inserts the order and its items in one transaction
func (r *OrderRepository) CreateWithItems(ctx context.Context, o *order.Order) error {
	if len(o.Items) == 0 {
		return order.ErrNoItems
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := o.Items
		o.Items = nil
		defer func() { o.Items = items }()

		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for i := range items {
			items[i].OrderID = o.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		if err := r.writeHistory(tx, o); err != nil {
			return err
		}
		return nil
	})
}

// FindByID loads an order with items and status history
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByCheckoutSession loads the order created for a checkout session
func (r *OrderRepository) FindByCheckoutSession(ctx context.Context, sessionID string) (*order.Order, error) {
	if sessionID == "" {
		return nil, order.ErrOrderNotFound
	}
	return r.findOne(ctx, "checkout_session_id = ?", sessionID)
}

// FindByPaymentIntent loads the order paid by a payment intent
func (r *OrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*order.Order, error) {
	if intentID == "" {
		return nil, order.ErrOrderNotFound
	}
	return r.findOne(ctx, "payment_intent_id = ?", intentID)
}

func (r *OrderRepository) findOne(ctx context.Context, query string, args ...interface{}) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Where(query, args...).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &o, nil
}

// Update locks the order row (SELECT ... FOR UPDATE), applies fn and saves
// the order with its pending history in the same transaction
func (r *OrderRepository) Update(ctx context.Context, id uuid.UUID, fn order.Mutator) (*order.Order, error) {
	var result order.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o order.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return order.ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}
		if err := tx.Where("order_id = ?", id).Order("id").Find(&o.Items).Error; err != nil {
			return fmt.Errorf("failed to load order items: %w", err)
		}

		changed, err := fn(&o)
		if err != nil {
			return err
		}
		if changed {
			if err := tx.Omit(clause.Associations).Save(&o).Error; err != nil {
				return fmt.Errorf("failed to save order: %w", err)
			}
			if err := r.writeHistory(tx, &o); err != nil {
				return err
			}
		}

		if err := tx.Where("order_id = ?", id).Order("created_at, id").Find(&o.StatusHistory).Error; err != nil {
			return fmt.Errorf("failed to load status history: %w", err)
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *OrderRepository) writeHistory(tx *gorm.DB, o *order.Order) error {
	if len(o.PendingHistory) == 0 {
		return nil
	}
	for i := range o.PendingHistory {
		o.PendingHistory[i].OrderID = o.ID
	}
	if err := tx.Create(&o.PendingHistory).Error; err != nil {
		return fmt.Errorf("failed to write status history: %w", err)
	}
	o.PendingHistory = nil
	return nil
}

// List returns a page of orders, newest first
func (r *OrderRepository) List(ctx context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []order.Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at DESC").
		Scopes(paginate(filter.Offset, filter.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}
