// Package export writes admin spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
)

// ContentType is the MIME type of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	productHeaders = []string{
		"ID", "Nom", "Slug", "Catégorie", "Prix de base (€)", "Personnalisable",
		"Actif", "Supprimé", "Variantes", "Créé le", "Modifié le",
	}
	variantHeaders = []string{
		"Produit", "SKU", "Taille", "Couleur", "Stock", "Ajustement (€)", "Prix final (€)", "Supprimé",
	}
)

// WriteCatalog writes a two sheet workbook (products, variants) to w.
// categoryNames maps category ids to display names.
func WriteCatalog(w io.Writer, products []product.Product, categoryNames map[uuid.UUID]string) error {
	file := xlsx.NewFile()

	productSheet, err := file.AddSheet("Produits")
	if err != nil {
		return fmt.Errorf("failed to create products sheet: %w", err)
	}
	variantSheet, err := file.AddSheet("Variantes")
	if err != nil {
		return fmt.Errorf("failed to create variants sheet: %w", err)
	}

	addHeader(productSheet, productHeaders)
	addHeader(variantSheet, variantHeaders)

	for _, p := range products {
		category := ""
		if p.CategoryID != nil {
			category = categoryNames[*p.CategoryID]
		}

		row := productSheet.AddRow()
		row.AddCell().SetString(p.ID.String())
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Slug)
		row.AddCell().SetString(category)
		row.AddCell().SetFloat(euros(p.BasePrice))
		row.AddCell().SetString(yesNo(p.Customizable))
		row.AddCell().SetString(yesNo(p.Active))
		row.AddCell().SetString(yesNo(p.Deleted))
		row.AddCell().SetInt(len(p.LiveVariants()))
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))

		for _, v := range p.Variants {
			vr := variantSheet.AddRow()
			vr.AddCell().SetString(p.Name)
			vr.AddCell().SetString(v.SKU)
			vr.AddCell().SetString(v.Size)
			vr.AddCell().SetString(v.Color)
			vr.AddCell().SetInt(v.StockQuantity)
			vr.AddCell().SetFloat(euros(v.PriceAdjustment))
			vr.AddCell().SetFloat(euros(p.BasePrice + v.PriceAdjustment))
			vr.AddCell().SetString(yesNo(v.Deleted))
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		cell := row.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		style.Font.Bold = true
		style.ApplyFont = true
		cell.SetStyle(style)
	}
}

func euros(cents int64) float64 {
	return float64(cents) / 100
}

func yesNo(v bool) string {
	if v {
		return "oui"
	}
	return "non"
}
