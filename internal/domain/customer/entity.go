// internal/domain/customer/entity.go
package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account mirrors a user registered with the hosted auth provider
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:255;index" json:"email"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile holds the customer details kept by the shop
type Profile struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Email     string    `gorm:"size:255" json:"email"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Phone     string    `gorm:"size:20" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Account) TableName() string { return "accounts" }
func (Profile) TableName() string { return "customer_profiles" }

// FullName returns first and last name joined
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Contact is a resolved recipient
type Contact struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
