// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a customizable textile article
type Product struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"not null;size:255" json:"name"`
	Slug         string     `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description  string     `gorm:"type:text" json:"description"` // Markdown
	BasePrice    int64      `gorm:"not null" json:"base_price"`  // Price in cents
	CategoryID   *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	ImageURL     string     `gorm:"size:500" json:"image_url"`
	Customizable bool       `gorm:"default:true" json:"customizable"`
	Active       bool       `gorm:"default:true" json:"active"`
	Deleted      bool       `gorm:"default:false;index" json:"deleted"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relationships
	Category *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// ProductVariant is a size/color combination of a product
type ProductVariant struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	SKU             string    `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Size            string    `gorm:"size:20" json:"size"`
	Color           string    `gorm:"size:50" json:"color"`
	StockQuantity   int       `gorm:"default:0" json:"stock_quantity"`
	PriceAdjustment int64     `gorm:"default:0" json:"price_adjustment"` // Relative to base price, in cents
	Deleted         bool      `gorm:"default:false" json:"deleted"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Category represents product categories
type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null;size:255" json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string     `gorm:"size:500" json:"description"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	SortOrder   int        `gorm:"default:0" json:"sort_order"`
	Deleted     bool       `gorm:"default:false" json:"deleted"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (ProductVariant) TableName() string { return "product_variants" }
func (Category) TableName() string       { return "categories" }

// Purchasable reports whether the product can be added to a cart
func (p *Product) Purchasable() bool {
	return p.Active && !p.Deleted
}

// Variant returns the live variant with the given id, or nil
func (p *Product) Variant(id *uuid.UUID) *ProductVariant {
	if id == nil {
		return nil
	}
	for i := range p.Variants {
		if p.Variants[i].ID == *id && !p.Variants[i].Deleted {
			return &p.Variants[i]
		}
	}
	return nil
}

// LiveVariants returns the variants that are not soft deleted
func (p *Product) LiveVariants() []ProductVariant {
	out := make([]ProductVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if !v.Deleted {
			out = append(out, v)
		}
	}
	return out
}

// StockQuantity sums the stock of live variants
func (p *Product) StockQuantity() int {
	total := 0
	for _, v := range p.LiveVariants() {
		total += v.StockQuantity
	}
	return total
}
