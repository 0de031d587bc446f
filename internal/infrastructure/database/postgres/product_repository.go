// internal/infrastructure/database/postgres/product_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository is the gorm implementation of product.Repository and
// product.CategoryRepository
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func preloadVariants(db *gorm.DB) *gorm.DB {
	return db.Order("size, color, created_at")
}

// ListProducts returns a page of products
func (r *ProductRepository) ListProducts(ctx context.Context, filter product.ListFilter) ([]product.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&product.Product{})
	if !filter.IncludeDeleted {
		query = query.Where("deleted = ?", false)
	}
	if !filter.IncludeInactive {
		query = query.Where("active = ?", true)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("name ILIKE ?", "%"+s+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []product.Product
	err := query.
		Preload("Variants", preloadVariants).
		Preload("Category").
		Order("name").
		Scopes(paginate(filter.Offset, filter.Limit)).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// FindProductByID loads a product with variants and category
func (r *ProductRepository) FindProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return r.findProduct(ctx, "id = ?", id)
}

// FindProductBySlug loads a product by slug
func (r *ProductRepository) FindProductBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.findProduct(ctx, "slug = ?", slug)
}

func (r *ProductRepository) findProduct(ctx context.Context, query string, args ...interface{}) (*product.Product, error) {
	var p product.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", preloadVariants).
		Preload("Category").
		Where(query, args...).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &p, nil
}

// CreateProduct inserts a product with its variants
func (r *ProductRepository) CreateProduct(ctx context.Context, p *product.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Variants {
		if p.Variants[i].ID == uuid.Nil {
			p.Variants[i].ID = uuid.New()
		}
		p.Variants[i].ProductID = p.ID
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// SaveProduct updates product columns only
func (r *ProductRepository) SaveProduct(ctx context.Context, p *product.Product) error {
	res := r.db.WithContext(ctx).Omit(clause.Associations).Save(p)
	if res.Error != nil {
		return fmt.Errorf("failed to save product: %w", res.Error)
	}
	return nil
}

// CountProductOrderReferences counts order items pointing at a product
func (r *ProductRepository) CountProductOrderReferences(ctx context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&order.Item{}).Where("product_id = ?", productID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count order references: %w", err)
	}
	return n, nil
}

// SoftDeleteProduct hides a product and all its variants
func (r *ProductRepository) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&product.Product{}).Where("id = ?", id).
			Updates(map[string]interface{}{"deleted": true, "active": false})
		if res.Error != nil {
			return fmt.Errorf("failed to soft delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return product.ErrProductNotFound
		}
		if err := tx.Model(&product.ProductVariant{}).Where("product_id = ?", id).
			Update("deleted", true).Error; err != nil {
			return fmt.Errorf("failed to soft delete variants: %w", err)
		}
		return nil
	})
}

// DeleteProduct removes an unreferenced product and its variants
func (r *ProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&product.ProductVariant{}).Error; err != nil {
			return fmt.Errorf("failed to delete variants: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&product.Product{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return product.ErrProductNotFound
		}
		return nil
	})
}

// SaveVariant inserts or updates a variant
func (r *ProductRepository) SaveVariant(ctx context.Context, v *product.ProductVariant) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Save(v).Error; err != nil {
		return fmt.Errorf("failed to save variant: %w", err)
	}
	return nil
}

// CountVariantOrderReferences counts order items pointing at a variant
func (r *ProductRepository) CountVariantOrderReferences(ctx context.Context, variantID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&order.Item{}).Where("product_variant_id = ?", variantID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count order references: %w", err)
	}
	return n, nil
}

// SoftDeleteVariant hides a variant
func (r *ProductRepository) SoftDeleteVariant(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&product.ProductVariant{}).Where("id = ?", id).Update("deleted", true)
	if res.Error != nil {
		return fmt.Errorf("failed to soft delete variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return product.ErrVariantNotFound
	}
	return nil
}

// DeleteVariant removes an unreferenced variant
func (r *ProductRepository) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&product.ProductVariant{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return product.ErrVariantNotFound
	}
	return nil
}

// ListCategories returns every category, deleted ones included
func (r *ProductRepository) ListCategories(ctx context.Context) ([]product.Category, error) {
	var categories []product.Category
	if err := r.db.WithContext(ctx).Order("sort_order, name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// FindCategoryByID loads a category
func (r *ProductRepository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*product.Category, error) {
	return r.findCategory(ctx, "id = ?", id)
}

// FindCategoryBySlug loads a category by slug
func (r *ProductRepository) FindCategoryBySlug(ctx context.Context, slug string) (*product.Category, error) {
	return r.findCategory(ctx, "slug = ?", slug)
}

func (r *ProductRepository) findCategory(ctx context.Context, query string, args ...interface{}) (*product.Category, error) {
	var c product.Category
	if err := r.db.WithContext(ctx).Where(query, args...).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return &c, nil
}

// CreateCategory inserts a category
func (r *ProductRepository) CreateCategory(ctx context.Context, c *product.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// SaveCategory updates a category
func (r *ProductRepository) SaveCategory(ctx context.Context, c *product.Category) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}
