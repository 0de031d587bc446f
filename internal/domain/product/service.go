// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service handles catalog business logic
type Service struct {
	repo       Repository
	categories *CategoryService
	logger     logrus.FieldLogger
}

// NewService creates a new product service
func NewService(repo Repository, categories *CategoryService, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

// ListRequest represents product list request parameters
type ListRequest struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category string `form:"category"`
	Search   string `form:"search"`
}

// ListResponse represents paginated product list response
type ListResponse struct {
	Products   []Product `json:"products"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// Detail is a product page payload
type Detail struct {
	Product         *Product   `json:"product"`
	DescriptionHTML string     `json:"description_html"`
	CategoryPath    []Category `json:"category_path"`
}

// CreateRequest represents product creation data
type CreateRequest struct {
	Name         string           `json:"name" binding:"required"`
	Slug         string           `json:"slug"`
	Description  string           `json:"description"`
	BasePrice    int64            `json:"base_price" binding:"min=0"`
	CategoryID   *uuid.UUID       `json:"category_id"`
	ImageURL     string           `json:"image_url"`
	Customizable *bool            `json:"customizable"`
	Active       *bool            `json:"active"`
	Variants     []VariantRequest `json:"variants"`
}

// UpdateRequest represents product update data
type UpdateRequest struct {
	Name         *string    `json:"name"`
	Slug         *string    `json:"slug"`
	Description  *string    `json:"description"`
	BasePrice    *int64     `json:"base_price"`
	CategoryID   *uuid.UUID `json:"category_id"`
	ImageURL     *string    `json:"image_url"`
	Customizable *bool      `json:"customizable"`
	Active       *bool      `json:"active"`
}

// VariantRequest represents variant creation or update data
type VariantRequest struct {
	ID              *uuid.UUID `json:"id"`
	SKU             string     `json:"sku" binding:"required"`
	Size            string     `json:"size"`
	Color           string     `json:"color"`
	StockQuantity   int        `json:"stock_quantity" binding:"min=0"`
	PriceAdjustment int64      `json:"price_adjustment"`
}

// DeleteResult tells how a product or variant was removed
type DeleteResult struct {
	SoftDeleted bool  `json:"soft_deleted"`
	References  int64 `json:"order_references"`
}

// List retrieves live, active products, optionally within a category subtree
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 24
	}

	filter := ListFilter{
		Search: strings.TrimSpace(req.Search),
		Offset: (req.Page - 1) * req.Limit,
		Limit:  req.Limit,
	}

	if req.Category != "" {
		cat, err := s.categories.GetBySlug(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		ids, err := s.categories.Subtree(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		filter.CategoryIDs = ids
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ListResponse{
		Products:   products,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// AdminList retrieves products including inactive and soft deleted ones
func (s *Service) AdminList(ctx context.Context, req *ListRequest, includeDeleted bool) (*ListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	products, total, err := s.repo.ListProducts(ctx, ListFilter{
		Search:          strings.TrimSpace(req.Search),
		IncludeInactive: true,
		IncludeDeleted:  includeDeleted,
		Offset:          (req.Page - 1) * req.Limit,
		Limit:           req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return &ListResponse{
		Products:   products,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int((total + int64(req.Limit) - 1) / int64(req.Limit)),
	}, nil
}

// All returns every non deleted product, for exports
func (s *Service) All(ctx context.Context) ([]Product, error) {
	products, _, err := s.repo.ListProducts(ctx, ListFilter{IncludeInactive: true})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a live product by ID
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Deleted {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// GetBySlug retrieves a product page with rendered description and category path
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Detail, error) {
	p, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.Purchasable() {
		return nil, ErrProductNotFound
	}
	p.Variants = p.LiveVariants()

	detail := &Detail{
		Product:         p,
		DescriptionHTML: RenderDescription(p.Description),
	}
	if p.CategoryID != nil {
		path, err := s.categories.Path(ctx, *p.CategoryID)
		if err != nil && !errors.Is(err, ErrCategoryNotFound) {
			return nil, err
		}
		detail.CategoryPath = path
	}
	return detail, nil
}

// Create creates a product with its variants
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Product, error) {
	if req.CategoryID != nil {
		if _, err := s.categories.Get(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	p := &Product{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Slug:         req.Slug,
		Description:  req.Description,
		BasePrice:    req.BasePrice,
		CategoryID:   req.CategoryID,
		ImageURL:     req.ImageURL,
		Customizable: boolOr(req.Customizable, true),
		Active:       boolOr(req.Active, true),
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	for _, vr := range req.Variants {
		p.Variants = append(p.Variants, newVariant(p.ID, vr))
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithField("product_id", p.ID).Info("product created")
	return p, nil
}

// Update applies partial changes to a product
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		p.Slug = Slugify(*req.Slug)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.BasePrice != nil {
		if *req.BasePrice < 0 {
			return nil, fmt.Errorf("base price cannot be negative")
		}
		p.BasePrice = *req.BasePrice
	}
	if req.CategoryID != nil {
		if _, err := s.categories.Get(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = req.CategoryID
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.Customizable != nil {
		p.Customizable = *req.Customizable
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// Delete removes a product. Products referenced by order items are soft
// deleted together with their variants so order history stays intact.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	refs, err := s.repo.CountProductOrderReferences(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count order references: %w", err)
	}

	result := &DeleteResult{References: refs}
	if refs > 0 {
		if err := s.repo.SoftDeleteProduct(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to soft delete product: %w", err)
		}
		result.SoftDeleted = true
	} else if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id":   id,
		"soft_deleted": result.SoftDeleted,
	}).Info("product deleted")
	return result, nil
}

// UpsertVariant creates a variant or updates the one named by req.ID
func (s *Service) UpsertVariant(ctx context.Context, productID uuid.UUID, req *VariantRequest) (*ProductVariant, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var v ProductVariant
	if req.ID != nil {
		existing := p.Variant(req.ID)
		if existing == nil {
			return nil, ErrVariantNotFound
		}
		v = *existing
		v.SKU = req.SKU
		v.Size = req.Size
		v.Color = req.Color
		v.StockQuantity = req.StockQuantity
		v.PriceAdjustment = req.PriceAdjustment
	} else {
		v = newVariant(p.ID, *req)
	}

	if err := s.repo.SaveVariant(ctx, &v); err != nil {
		return nil, fmt.Errorf("failed to save variant: %w", err)
	}
	return &v, nil
}

// DeleteVariant removes a variant, soft deleting it when orders reference it
func (s *Service) DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) (*DeleteResult, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Variant(&variantID) == nil {
		return nil, ErrVariantNotFound
	}

	refs, err := s.repo.CountVariantOrderReferences(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count order references: %w", err)
	}
	result := &DeleteResult{References: refs}
	if refs > 0 {
		result.SoftDeleted = true
		err = s.repo.SoftDeleteVariant(ctx, variantID)
	} else {
		err = s.repo.DeleteVariant(ctx, variantID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete variant: %w", err)
	}
	return result, nil
}

func newVariant(productID uuid.UUID, req VariantRequest) ProductVariant {
	return ProductVariant{
		ID:              uuid.New(),
		ProductID:       productID,
		SKU:             req.SKU,
		Size:            req.Size,
		Color:           req.Color,
		StockQuantity:   req.StockQuantity,
		PriceAdjustment: req.PriceAdjustment,
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
