// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/atelier-textile/storefront-api/internal/config"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/pkg/money"
)

// Service handles PDF generation
type Service struct {
	shop  config.ShopConfig
	money *money.Formatter
	tmpl  *template.Template
	now   func() time.Time
}

// NewService creates a new PDF service
func NewService(shop config.ShopConfig) *Service {
	return &Service{
		shop:  shop,
		money: money.NewFormatter(shop.Locale),
		tmpl:  template.Must(template.New("invoice").Parse(invoiceTemplate)),
		now:   time.Now,
	}
}

// InvoiceNumber returns the invoice number of an order
func InvoiceNumber(o *order.Order) string {
	return "FAC-" + strings.TrimPrefix(o.Reference(), "CMD-")
}

// GenerateInvoice generates a PDF invoice for an order
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderInvoiceHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Title.Set(InvoiceNumber(o))

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.FooterRight.Set("[page]/[topage]")
	page.FooterFontSize.Set(9)
	page.Encoding.Set("utf-8")
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderInvoiceHTML renders the invoice page fed to wkhtmltopdf
func (s *Service) RenderInvoiceHTML(o *order.Order) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, s.invoiceData(o)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (s *Service) invoiceData(o *order.Order) InvoiceData {
	issued := s.now()
	if o.PaidAt != nil {
		issued = *o.PaidAt
	}

	data := InvoiceData{
		InvoiceNumber: InvoiceNumber(o),
		InvoiceDate:   issued.Format("02/01/2006"),
		Reference:     o.Reference(),
		OrderDate:     o.CreatedAt.Format("02/01/2006"),
		Status:        string(o.Status),
		CustomerName:  o.CustomerName,
		CustomerEmail: o.Email,
		Subtotal:      s.money.Format(o.Subtotal(), o.Currency),
		Shipping:      s.money.Format(o.ShippingCost, o.Currency),
		Total:         s.money.Format(o.TotalAmount, o.Currency),
		Shop: ShopInfo{
			Name:    s.shop.Name,
			Address: s.shop.Address,
			Phone:   s.shop.Phone,
			Email:   s.shop.Email,
			Website: s.shop.URL,
			SIRET:   s.shop.SIRET,
		},
	}

	if a := o.ShippingAddress; a != nil {
		if data.CustomerName == "" {
			data.CustomerName = a.Name
		}
		for _, line := range []string{a.Line1, a.Line2, strings.TrimSpace(a.PostalCode + " " + a.City), a.Country} {
			if line != "" {
				data.Address = append(data.Address, line)
			}
		}
	}

	for _, it := range o.Items {
		data.Lines = append(data.Lines, InvoiceLine{
			Name:          it.Name,
			Details:       strings.Trim(strings.Join([]string{it.Size, it.Color}, " / "), " /"),
			Customization: it.CustomizationData.Summary(),
			Quantity:      it.Quantity,
			UnitPrice:     s.money.Format(it.PricePerUnit, o.Currency),
			Total:         s.money.Format(it.LineTotal(), o.Currency),
		})
	}
	return data
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Reference     string
	OrderDate     string
	Status        string
	CustomerName  string
	CustomerEmail string
	Address       []string
	Lines         []InvoiceLine
	Subtotal      string
	Shipping      string
	Total         string
	Shop          ShopInfo
}

// InvoiceLine is one rendered order item
type InvoiceLine struct {
	Name          string
	Details       string
	Customization string
	Quantity      int
	UnitPrice     string
	Total         string
}

// ShopInfo represents the seller block
type ShopInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
	SIRET   string
}

// Invoice HTML template
const invoiceTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
    <meta charset="UTF-8">
    <title>Facture {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; font-size: 13px; }
        .header { width: 100%; border-bottom: 2px solid #eee; padding-bottom: 20px; margin-bottom: 30px; }
        .header td { vertical-align: top; }
        .invoice-title { font-size: 28px; font-weight: bold; margin-bottom: 10px; }
        .section-title { font-size: 15px; font-weight: bold; margin-bottom: 8px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin: 25px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .items-table .num { text-align: right; }
        .muted { color: #6b7280; font-size: 11px; }
        .totals { width: 300px; margin-left: auto; }
        .totals td { padding: 4px 0; }
        .totals .grand { font-weight: bold; font-size: 16px; border-top: 2px solid #333; }
        .footer { margin-top: 40px; text-align: center; color: #6b7280; font-size: 11px; }
    </style>
</head>
<body>
    <table class="header">
        <tr>
            <td>
                <div class="invoice-title">{{.Shop.Name}}</div>
                {{if .Shop.Address}}<div>{{.Shop.Address}}</div>{{end}}
                {{if .Shop.Phone}}<div>Tél. : {{.Shop.Phone}}</div>{{end}}
                {{if .Shop.Email}}<div>{{.Shop.Email}}</div>{{end}}
                {{if .Shop.Website}}<div>{{.Shop.Website}}</div>{{end}}
            </td>
            <td style="text-align: right;">
                <div class="invoice-title">FACTURE</div>
                <div>N° {{.InvoiceNumber}}</div>
                <div>Date : {{.InvoiceDate}}</div>
                <div>Commande {{.Reference}} du {{.OrderDate}}</div>
            </td>
        </tr>
    </table>

    <div class="section-title">Facturé à</div>
    <div>{{.CustomerName}}</div>
    {{if .CustomerEmail}}<div>{{.CustomerEmail}}</div>{{end}}
    {{range .Address}}<div>{{.}}</div>{{end}}

    <table class="items-table">
        <thead>
            <tr><th>Article</th><th class="num">Qté</th><th class="num">Prix unitaire</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr>
                <td>{{.Name}}{{if .Details}}<div class="muted">{{.Details}}</div>{{end}}{{if .Customization}}<div class="muted">{{.Customization}}</div>{{end}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.UnitPrice}}</td>
                <td class="num">{{.Total}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Sous-total</td><td style="text-align: right;">{{.Subtotal}}</td></tr>
        <tr><td>Livraison</td><td style="text-align: right;">{{.Shipping}}</td></tr>
        <tr class="grand"><td>Total TTC</td><td style="text-align: right;">{{.Total}}</td></tr>
    </table>

    <div class="footer">
        {{.Shop.Name}}{{if .Shop.SIRET}} · SIRET {{.Shop.SIRET}}{{end}}
    </div>
</body>
</html>`
