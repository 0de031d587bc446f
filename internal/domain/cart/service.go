// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelier-textile/storefront-api/internal/domain/customization"
	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrProductUnavailable      = errors.New("product not found or inactive")
	ErrVariantNotFound         = errors.New("product variant not found")
	ErrNotCustomizable         = errors.New("product cannot be customized")
	ErrIncompleteCustomization = errors.New("customization is incomplete")
)

// ProductLookup loads a product with its variants
type ProductLookup interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

// Service handles cart business logic
type Service struct {
	persister Persister
	products  ProductLookup
	logger    logrus.FieldLogger
}

// NewService creates a new cart service
func NewService(persister Persister, products ProductLookup, logger logrus.FieldLogger) *Service {
	return &Service{
		persister: persister,
		products:  products,
		logger:    logger,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID     uuid.UUID                    `json:"product_id" binding:"required"`
	VariantID     *uuid.UUID                   `json:"variant_id"`
	Quantity      int                          `json:"quantity" binding:"required,min=1"`
	Size          string                       `json:"size"`
	Color         string                       `json:"color"`
	Customization *customization.Customization `json:"customization"`
}

// RemoveMatchingRequest identifies a cart line by its contents
type RemoveMatchingRequest struct {
	ProductID     uuid.UUID                    `json:"product_id" binding:"required"`
	VariantID     *uuid.UUID                   `json:"variant_id"`
	Size          string                       `json:"size"`
	Color         string                       `json:"color"`
	Customization *customization.Customization `json:"customization"`
}

// UpdateItemRequest represents update cart item request
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// View is the cart returned to clients
type View struct {
	SessionID string `json:"session_id"`
	Items     []Item `json:"items"`
	Totals    Totals `json:"totals"`
}

// Quote is a unit price preview for a product configuration
type Quote struct {
	BasePrice             int64 `json:"base_price"`
	VariantAdjustment     int64 `json:"variant_adjustment"`
	CustomizationPrice    int64 `json:"customization_price"`
	UnitPrice             int64 `json:"unit_price"`
	CustomizationComplete bool  `json:"customization_complete"`
}

// Get returns the cart of a session
func (s *Service) Get(ctx context.Context, sessionID string) (*View, error) {
	store, err := Open(ctx, sessionID, s.persister)
	if err != nil {
		return nil, err
	}
	return viewOf(store), nil
}

// AddItem prices the requested configuration and adds it to the cart
func (s *Service) AddItem(ctx context.Context, sessionID string, req *AddItemRequest) (*View, error) {
	prod, quote, err := s.price(ctx, req.ProductID, req.VariantID, req.Customization)
	if err != nil {
		return nil, err
	}
	if !req.Customization.IsEmpty() && !quote.CustomizationComplete {
		return nil, ErrIncompleteCustomization
	}

	store, err := Open(ctx, sessionID, s.persister)
	if err != nil {
		return nil, err
	}

	item := Item{
		ProductID:     prod.ID,
		VariantID:     req.VariantID,
		Name:          prod.Name,
		UnitPrice:     quote.UnitPrice,
		Quantity:      req.Quantity,
		Size:          req.Size,
		Color:         req.Color,
		ImageURL:      prod.ImageURL,
		Customization: req.Customization,
	}
	if req.Customization.IsEmpty() {
		item.Customization = nil
	}
	if v := prod.Variant(req.VariantID); v != nil {
		if item.Size == "" {
			item.Size = v.Size
		}
		if item.Color == "" {
			item.Color = v.Color
		}
	}

	line, err := store.Add(ctx, item)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"line_id":    line.ID,
		"product_id": prod.ID,
	}).Debug("cart line added")

	return viewOf(store), nil
}

// UpdateItem replaces the quantity of a line, removing it when qty <= 0
func (s *Service) UpdateItem(ctx context.Context, sessionID, lineID string, req *UpdateItemRequest) (*View, error) {
	store, err := Open(ctx, sessionID, s.persister)
	if err != nil {
		return nil, err
	}
	if err := store.UpdateQuantity(ctx, lineID, req.Quantity); err != nil {
		return nil, err
	}
	return viewOf(store), nil
}

// RemoveItem deletes a cart line
func (s *Service) RemoveItem(ctx context.Context, sessionID, lineID string) (*View, error) {
	store, err := Open(ctx, sessionID, s.persister)
	if err != nil {
		return nil, err
	}
	if err := store.Remove(ctx, lineID); err != nil {
		return nil, err
	}
	return viewOf(store), nil
}

// RemoveMatching deletes the first line with the same product, variant,
// size, color and customization
func (s *Service) RemoveMatching(ctx context.Context, sessionID string, req *RemoveMatchingRequest) (*View, error) {
	store, err := Open(ctx, sessionID, s.persister)
	if err != nil {
		return nil, err
	}
	c := req.Customization
	if c.IsEmpty() {
		c = nil
	}
	key := MatchKey{
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		Size:          req.Size,
		Color:         req.Color,
		Customization: c,
	}
	if err := store.RemoveMatching(ctx, key); err != nil {
		return nil, err
	}
	return viewOf(store), nil
}

// Clear empties the cart of a session
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	store, err := Open(ctx, sessionID, s.persister)
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}

// QuotePrice returns the unit price a configuration would be added at
func (s *Service) QuotePrice(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, c *customization.Customization) (*Quote, error) {
	_, quote, err := s.price(ctx, productID, variantID, c)
	return quote, err
}

func (s *Service) price(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, c *customization.Customization) (*product.Product, *Quote, error) {
	prod, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, nil, ErrProductUnavailable
		}
		return nil, nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !prod.Purchasable() {
		return nil, nil, ErrProductUnavailable
	}

	quote := &Quote{BasePrice: prod.BasePrice}
	if variantID != nil {
		v := prod.Variant(variantID)
		if v == nil {
			return nil, nil, ErrVariantNotFound
		}
		quote.VariantAdjustment = v.PriceAdjustment
	}

	if !c.IsEmpty() {
		if !prod.Customizable {
			return nil, nil, ErrNotCustomizable
		}
		quote.CustomizationPrice = customization.Price(c)
		quote.CustomizationComplete = customization.IsComplete(c)
	}

	quote.UnitPrice = quote.BasePrice + quote.VariantAdjustment + quote.CustomizationPrice
	return prod, quote, nil
}

func viewOf(store *Store) *View {
	return &View{
		SessionID: store.SessionID(),
		Items:     store.Items(),
		Totals:    store.Totals(),
	}
}
