// internal/infrastructure/database/postgres/cart_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRecordRepository is the gorm implementation of cart.RecordRepository
type CartRecordRepository struct {
	db *gorm.DB
}

// NewCartRecordRepository creates a new cart record repository
func NewCartRecordRepository(db *gorm.DB) *CartRecordRepository {
	return &CartRecordRepository{db: db}
}

// FindLatestByUser returns the most recently updated cart of a user
func (r *CartRecordRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*cart.Record, error) {
	var record cart.Record
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &record, nil
}

// Create inserts a cart with its items
func (r *CartRecordRepository) Create(ctx context.Context, record *cart.Record) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// ReplaceItems swaps the lines of a cart
func (r *CartRecordRepository) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []cart.RecordItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&cart.Record{}).Where("id = ?", cartID).Update("updated_at", time.Now().UTC())
		if res.Error != nil {
			return fmt.Errorf("failed to touch cart: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return cart.ErrRecordNotFound
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&cart.RecordItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].CartID = cartID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert cart items: %w", err)
		}
		return nil
	})
}

// DeleteByUser removes every cart of a user and reports how many were deleted
func (r *CartRecordRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, "user_id = ?", userID)
}

// DeleteBySession removes the carts recorded for a browser session
func (r *CartRecordRepository) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	return r.deleteWhere(ctx, "session_id = ?", sessionID)
}

func (r *CartRecordRepository) deleteWhere(ctx context.Context, query string, arg interface{}) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id IN (?)", tx.Model(&cart.Record{}).Select("id").Where(query, arg)).
			Delete(&cart.RecordItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		res := tx.Where(query, arg).Delete(&cart.Record{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete carts: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
