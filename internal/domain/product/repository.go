// internal/domain/product/repository.go
package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrVariantNotFound  = errors.New("product variant not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryCycle    = errors.New("category cannot be its own ancestor")
	ErrCategoryInUse    = errors.New("category still has subcategories")
)

// ListFilter narrows product listings
type ListFilter struct {
	CategoryIDs     []uuid.UUID
	Search          string
	IncludeInactive bool
	IncludeDeleted  bool
	Offset          int
	// Limit <= 0 lists every matching product
	Limit int
}

// Repository persists products and variants
type Repository interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, int64, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	SaveProduct(ctx context.Context, p *Product) error
	CountProductOrderReferences(ctx context.Context, productID uuid.UUID) (int64, error)
	SoftDeleteProduct(ctx context.Context, id uuid.UUID) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SaveVariant(ctx context.Context, v *ProductVariant) error
	CountVariantOrderReferences(ctx context.Context, variantID uuid.UUID) (int64, error)
	SoftDeleteVariant(ctx context.Context, id uuid.UUID) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists categories
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	SaveCategory(ctx context.Context, c *Category) error
}
