package cart_test

import (
	"context"
	"testing"

	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/atelier-textile/storefront-api/internal/domain/customization"
	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/atelier-textile/storefront-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	svc      *cart.Service
	products *testutil.ProductRepository
	hoodie   *product.Product
	mug      *product.Product
}

func newCartService(t *testing.T) *catalogFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := testutil.NewProductRepository()
	catalog := product.NewService(repo, product.NewCategoryService(repo), logger)

	ctx := context.Background()
	hoodie, err := catalog.Create(ctx, &product.CreateRequest{
		Name:      "Sweat à capuche",
		BasePrice: 3500,
		Variants:  []product.VariantRequest{{SKU: "HOOD-XL", Size: "XL", Color: "Gris", PriceAdjustment: 300}},
	})
	require.NoError(t, err)
	notCustomizable := false
	mug, err := catalog.Create(ctx, &product.CreateRequest{Name: "Mug", BasePrice: 1200, Customizable: &notCustomizable})
	require.NoError(t, err)

	return &catalogFixture{
		svc:      cart.NewService(testutil.NewCartPersister(), catalog, logger),
		products: repo,
		hoodie:   hoodie,
		mug:      mug,
	}
}

func embroidery(text string) *customization.Customization {
	return &customization.Customization{Customizations: []customization.Descriptor{
		{Face: "front", Technique: customization.TechniqueEmbroidery, Position: "coeur", Content: customization.ContentText, Text: text},
	}}
}

func TestAddItemPricesVariantAndCustomization(t *testing.T) {
	f := newCartService(t)
	variantID := f.hoodie.Variants[0].ID

	view, err := f.svc.AddItem(context.Background(), "sess", &cart.AddItemRequest{
		ProductID:     f.hoodie.ID,
		VariantID:     &variantID,
		Quantity:      2,
		Customization: embroidery("Hi"),
	})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	line := view.Items[0]
	assert.Equal(t, int64(3500+300+1200), line.UnitPrice)
	assert.Equal(t, "XL", line.Size)
	assert.Equal(t, "Gris", line.Color)
	assert.Equal(t, int64(2*5000), view.Totals.SubTotal)
}

func TestAddItemRejectsIncompleteCustomization(t *testing.T) {
	f := newCartService(t)
	incomplete := &customization.Customization{Customizations: []customization.Descriptor{
		{Face: "front", Technique: customization.TechniqueEmbroidery, Position: "coeur", Content: customization.ContentText},
	}}

	_, err := f.svc.AddItem(context.Background(), "sess", &cart.AddItemRequest{
		ProductID: f.hoodie.ID, Quantity: 1, Customization: incomplete,
	})
	require.ErrorIs(t, err, cart.ErrIncompleteCustomization)
}

func TestAddItemRejectsUnavailableProducts(t *testing.T) {
	f := newCartService(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "sess", &cart.AddItemRequest{ProductID: uuid.New(), Quantity: 1})
	require.ErrorIs(t, err, cart.ErrProductUnavailable)

	_, err = f.svc.AddItem(ctx, "sess", &cart.AddItemRequest{ProductID: f.mug.ID, Quantity: 1, Customization: embroidery("Hi")})
	require.ErrorIs(t, err, cart.ErrNotCustomizable)

	missing := uuid.New()
	_, err = f.svc.AddItem(ctx, "sess", &cart.AddItemRequest{ProductID: f.hoodie.ID, VariantID: &missing, Quantity: 1})
	require.ErrorIs(t, err, cart.ErrVariantNotFound)

	require.NoError(t, f.products.SoftDeleteProduct(ctx, f.mug.ID))
	_, err = f.svc.AddItem(ctx, "sess", &cart.AddItemRequest{ProductID: f.mug.ID, Quantity: 1})
	require.ErrorIs(t, err, cart.ErrProductUnavailable)
}

func TestCartLineLifecycle(t *testing.T) {
	f := newCartService(t)
	ctx := context.Background()

	view, err := f.svc.AddItem(ctx, "sess", &cart.AddItemRequest{ProductID: f.mug.ID, Quantity: 1})
	require.NoError(t, err)
	view, err = f.svc.AddItem(ctx, "sess", &cart.AddItemRequest{ProductID: f.mug.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	lineID := view.Items[0].ID
	assert.Equal(t, 3, view.Items[0].Quantity)

	view, err = f.svc.UpdateItem(ctx, "sess", lineID, &cart.UpdateItemRequest{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(5*1200), view.Totals.SubTotal)

	view, err = f.svc.RemoveItem(ctx, "sess", lineID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = f.svc.RemoveItem(ctx, "sess", lineID)
	require.ErrorIs(t, err, cart.ErrLineNotFound)

	other, err := f.svc.Get(ctx, "other-session")
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

func TestQuotePrice(t *testing.T) {
	f := newCartService(t)

	quote, err := f.svc.QuotePrice(context.Background(), f.hoodie.ID, nil, embroidery("Equipe de France"))
	require.NoError(t, err)
	assert.Equal(t, int64(3500), quote.BasePrice)
	assert.Equal(t, int64(1000+300), quote.CustomizationPrice)
	assert.Equal(t, int64(4800), quote.UnitPrice)
	assert.True(t, quote.CustomizationComplete)
}

func TestRemoveMatchingSeparatesCustomizedLines(t *testing.T) {
	f := newCartService(t)
	ctx := context.Background()
	variantID := f.hoodie.Variants[0].ID

	_, err := f.svc.AddItem(ctx, "sess", &cart.AddItemRequest{ProductID: f.hoodie.ID, VariantID: &variantID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, "sess", &cart.AddItemRequest{
		ProductID: f.hoodie.ID, VariantID: &variantID, Quantity: 1, Customization: embroidery("Hi"),
	})
	require.NoError(t, err)

	plain := &cart.RemoveMatchingRequest{ProductID: f.hoodie.ID, VariantID: &variantID, Size: "XL", Color: "Gris"}
	view, err := f.svc.RemoveMatching(ctx, "sess", plain)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.NotNil(t, view.Items[0].Customization)

	_, err = f.svc.RemoveMatching(ctx, "sess", plain)
	require.ErrorIs(t, err, cart.ErrLineNotFound)

	view, err = f.svc.RemoveMatching(ctx, "sess", &cart.RemoveMatchingRequest{
		ProductID: f.hoodie.ID, VariantID: &variantID, Size: "XL", Color: "Gris", Customization: embroidery("Hi"),
	})
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	stored, err := f.svc.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
}
