package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestWriteCatalog(t *testing.T) {
	categoryID := uuid.New()
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	products := []product.Product{
		{
			ID: uuid.New(), Name: "T-shirt bio", Slug: "t-shirt-bio", BasePrice: 1990,
			CategoryID: &categoryID, Customizable: true, Active: true, CreatedAt: now, UpdatedAt: now,
			Variants: []product.ProductVariant{
				{SKU: "TS-M-NOIR", Size: "M", Color: "Noir", StockQuantity: 12},
				{SKU: "TS-XL-NOIR", Size: "XL", Color: "Noir", StockQuantity: 3, PriceAdjustment: 200, Deleted: true},
			},
		},
		{ID: uuid.New(), Name: "Tote bag", Slug: "tote-bag", BasePrice: 900, CreatedAt: now, UpdatedAt: now},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, products, map[uuid.UUID]string{categoryID: "Hauts"}))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 2)

	productSheet := file.Sheets[0]
	assert.Equal(t, "Produits", productSheet.Name)
	require.Len(t, productSheet.Rows, 3)
	assert.Equal(t, "Nom", productSheet.Rows[0].Cells[1].String())
	assert.Equal(t, "T-shirt bio", productSheet.Rows[1].Cells[1].String())
	assert.Equal(t, "Hauts", productSheet.Rows[1].Cells[3].String())
	assert.Equal(t, "oui", productSheet.Rows[1].Cells[5].String())
	assert.Equal(t, "1", productSheet.Rows[1].Cells[8].String())
	assert.Equal(t, "non", productSheet.Rows[2].Cells[6].String())

	variantSheet := file.Sheets[1]
	require.Len(t, variantSheet.Rows, 3)
	assert.Equal(t, "TS-XL-NOIR", variantSheet.Rows[2].Cells[1].String())
	assert.Equal(t, "3", variantSheet.Rows[2].Cells[4].String())
	assert.Equal(t, "oui", variantSheet.Rows[2].Cells[7].String())
}
