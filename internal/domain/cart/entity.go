// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/atelier-textile/storefront-api/internal/domain/customization"
	"github.com/google/uuid"
)

// Item is one line of a session cart. UnitPrice already includes the
// customization surcharge.
type Item struct {
	ID            string                       `json:"id"`
	ProductID     uuid.UUID                    `json:"product_id"`
	VariantID     *uuid.UUID                   `json:"variant_id,omitempty"`
	Name          string                       `json:"name"`
	UnitPrice     int64                        `json:"unit_price"`
	Quantity      int                          `json:"quantity"`
	Size          string                       `json:"size,omitempty"`
	Color         string                       `json:"color,omitempty"`
	ImageURL      string                       `json:"image_url,omitempty"`
	Customization *customization.Customization `json:"customization,omitempty"`
	AddedAt       time.Time                    `json:"added_at"`
}

// LineTotal returns unit price times quantity
func (i Item) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// IsCustomized reports whether the line carries a customization
func (i Item) IsCustomized() bool {
	return !i.Customization.IsEmpty()
}

// MatchKey identifies a cart line for merging and removal
type MatchKey struct {
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Size          string
	Color         string
	Customization *customization.Customization
}

// KeyOf returns the match key of an item
func KeyOf(i Item) MatchKey {
	return MatchKey{
		ProductID:     i.ProductID,
		VariantID:     i.VariantID,
		Size:          i.Size,
		Color:         i.Color,
		Customization: i.Customization,
	}
}

func (k MatchKey) matches(i Item) bool {
	if k.ProductID != i.ProductID || k.Size != i.Size || k.Color != i.Color {
		return false
	}
	if !sameVariant(k.VariantID, i.VariantID) {
		return false
	}
	// customized and plain lines never match each other
	if k.Customization.IsEmpty() != i.Customization.IsEmpty() {
		return false
	}
	return k.Customization.Key() == i.Customization.Key()
}

func sameVariant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int   `json:"item_count"`
	TotalQuantity int   `json:"total_quantity"`
	SubTotal      int64 `json:"sub_total"`
}

// Record is the persisted cart kept for audit purposes at checkout time
type Record struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	SessionID string       `gorm:"size:64;index" json:"session_id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Items     []RecordItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// RecordItem is one line of a persisted cart
type RecordItem struct {
	ID            uint                         `gorm:"primaryKey" json:"id"`
	CartID        uuid.UUID                    `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID     uuid.UUID                    `gorm:"type:uuid;not null;index" json:"product_id"`
	VariantID     *uuid.UUID                   `gorm:"type:uuid" json:"variant_id"`
	Quantity      int                          `gorm:"not null;default:1" json:"quantity"`
	UnitPrice     int64                        `gorm:"not null" json:"unit_price"`
	Size          string                       `gorm:"size:20" json:"size"`
	Color         string                       `gorm:"size:50" json:"color"`
	Customization *customization.Customization `gorm:"type:jsonb" json:"customization,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
}

// TableName overrides
func (Record) TableName() string     { return "carts" }
func (RecordItem) TableName() string { return "cart_items" }

// RecordItemsFrom converts session lines to persisted cart lines
func RecordItemsFrom(cartID uuid.UUID, items []Item) []RecordItem {
	out := make([]RecordItem, 0, len(items))
	for _, it := range items {
		out = append(out, RecordItem{
			CartID:        cartID,
			ProductID:     it.ProductID,
			VariantID:     it.VariantID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Size:          it.Size,
			Color:         it.Color,
			Customization: it.Customization,
		})
	}
	return out
}
