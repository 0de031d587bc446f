// internal/pkg/email/templates.go
package email

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"><title>{{.ShopName}}</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #222; max-width: 640px; margin: 0 auto; padding: 20px;">
<div style="border-bottom: 2px solid #222; padding-bottom: 12px; margin-bottom: 20px;"><h1 style="margin: 0; font-size: 22px;">{{.ShopName}}</h1></div>
{{template "content" .}}
<div style="border-top: 1px solid #ddd; margin-top: 30px; padding-top: 12px; font-size: 12px; color: #777;">
<p>&copy; {{.Year}} {{.ShopName}} &middot; <a href="{{.ShopURL}}">{{.ShopURL}}</a></p>
</div>
</body>
</html>{{end}}`

const contactHTML = `{{define "content"}}
<h2>Nouveau message de contact</h2>
<p><strong>Nom :</strong> {{.Name}}<br><strong>E-mail :</strong> {{.Email}}{{if .Phone}}<br><strong>Téléphone :</strong> {{.Phone}}{{end}}</p>
{{if .Subject}}<p><strong>Sujet :</strong> {{.Subject}}</p>{{end}}
<p style="white-space: pre-line;">{{.Message}}</p>
{{end}}`

const contactText = `Nouveau message de contact

Nom : {{.Name}}
E-mail : {{.Email}}
{{if .Phone}}Téléphone : {{.Phone}}
{{end}}{{if .Subject}}Sujet : {{.Subject}}
{{end}}
{{.Message}}
`

const quoteHTML = `{{define "content"}}
<h2>Demande de devis</h2>
<p><strong>Nom :</strong> {{.Name}}<br><strong>E-mail :</strong> {{.Email}}{{if .Phone}}<br><strong>Téléphone :</strong> {{.Phone}}{{end}}{{if .Company}}<br><strong>Société :</strong> {{.Company}}{{end}}</p>
<ul>
{{if .Product}}<li>Produit : {{.Product}}</li>{{end}}
<li>Quantité : {{.Quantity}}</li>
{{if .Technique}}<li>Technique : {{.Technique}}</li>{{end}}
{{if .Deadline}}<li>Échéance : {{.Deadline}}</li>{{end}}
</ul>
{{if .Message}}<p style="white-space: pre-line;">{{.Message}}</p>{{end}}
{{end}}`

const quoteText = `Demande de devis

Nom : {{.Name}}
E-mail : {{.Email}}
{{if .Phone}}Téléphone : {{.Phone}}
{{end}}{{if .Company}}Société : {{.Company}}
{{end}}{{if .Product}}Produit : {{.Product}}
{{end}}Quantité : {{.Quantity}}
{{if .Technique}}Technique : {{.Technique}}
{{end}}{{if .Deadline}}Échéance : {{.Deadline}}
{{end}}
{{.Message}}
`

const orderHTML = `{{define "content"}}
<h2>Merci pour votre commande{{if .CustomerName}}, {{.CustomerName}}{{end}} !</h2>
<p>Votre paiement a bien été reçu. Commande <strong>{{.Reference}}</strong> du {{.OrderDate}}.</p>
<table style="width: 100%; border-collapse: collapse;">
<thead><tr style="background: #f4f4f4;"><th align="left">Article</th><th>Qté</th><th align="right">Prix</th><th align="right">Total</th></tr></thead>
<tbody>
{{range .Lines}}<tr style="border-bottom: 1px solid #eee;">
<td>{{.Name}}{{if .Variant}}<br><small>{{.Variant}}</small>{{end}}{{if .Customization}}<br><small>{{.Customization}}</small>{{end}}</td>
<td align="center">{{.Quantity}}</td><td align="right">{{.UnitPrice}}</td><td align="right">{{.LineTotal}}</td>
</tr>
{{end}}</tbody>
</table>
<p style="text-align: right;">Sous-total : {{.Subtotal}}<br>Livraison : {{.Shipping}}<br><strong>Total : {{.Total}}</strong></p>
{{if .Address}}<h3>Adresse de livraison</h3><p>{{range .Address}}{{.}}<br>{{end}}</p>{{end}}
{{end}}`

const orderText = `Merci pour votre commande{{if .CustomerName}}, {{.CustomerName}}{{end}} !

Commande {{.Reference}} du {{.OrderDate}}

{{range .Lines}}- {{.Name}}{{if .Variant}} ({{.Variant}}){{end}} x{{.Quantity}} : {{.LineTotal}}
{{if .Customization}}  {{.Customization}}
{{end}}{{end}}
Sous-total : {{.Subtotal}}
Livraison : {{.Shipping}}
Total : {{.Total}}
{{if .Address}}
Adresse de livraison :
{{range .Address}}{{.}}
{{end}}{{end}}`

// templateSet pairs the HTML and plain text renderings of one message
type templateSet struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func loadTemplates() map[MessageType]templateSet {
	build := func(name, content, text string) templateSet {
		h := htmltemplate.Must(htmltemplate.New(name).Parse(layoutHTML))
		htmltemplate.Must(h.Parse(content))
		return templateSet{
			html: h,
			text: texttemplate.Must(texttemplate.New(name).Parse(text)),
		}
	}

	return map[MessageType]templateSet{
		MessageTypeContact:           build("contact", contactHTML, contactText),
		MessageTypeQuote:             build("quote", quoteHTML, quoteText),
		MessageTypeOrderConfirmation: build("order", orderHTML, orderText),
	}
}
