// internal/infrastructure/database/postgres/customer_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerDirectory is the gorm implementation of customer.Directory
type CustomerDirectory struct {
	db *gorm.DB
}

// NewCustomerDirectory creates a new customer directory
func NewCustomerDirectory(db *gorm.DB) *CustomerDirectory {
	return &CustomerDirectory{db: db}
}

// FindAccount loads the auth account of a user
func (d *CustomerDirectory) FindAccount(ctx context.Context, id uuid.UUID) (*customer.Account, error) {
	var acc customer.Account
	if err := d.db.WithContext(ctx).First(&acc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &acc, nil
}

// FindProfile loads the shop profile of a user
func (d *CustomerDirectory) FindProfile(ctx context.Context, userID uuid.UUID) (*customer.Profile, error) {
	var prof customer.Profile
	if err := d.db.WithContext(ctx).First(&prof, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &prof, nil
}

// SaveProfile inserts or updates a profile
func (d *CustomerDirectory) SaveProfile(ctx context.Context, p *customer.Profile) error {
	if err := d.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
