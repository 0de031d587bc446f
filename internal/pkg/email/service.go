// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/atelier-textile/storefront-api/internal/config"
	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/pkg/money"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

// Service renders and sends the shop's transactional e-mails
type Service struct {
	transport    Transport
	from         string
	contactEmail string
	shop         config.ShopConfig
	templates    map[MessageType]templateSet
	sanitizer    *bluemonday.Policy
	money        *money.Formatter
	logger       logrus.FieldLogger
	now          func() time.Time
}

// NewService creates a new e-mail service
func NewService(cfg config.EmailConfig, shop config.ShopConfig, transport Transport, logger logrus.FieldLogger) *Service {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	contact := cfg.ContactEmail
	if contact == "" {
		contact = shop.Email
	}

	return &Service{
		transport:    transport,
		from:         from,
		contactEmail: contact,
		shop:         shop,
		templates:    loadTemplates(),
		sanitizer:    bluemonday.StrictPolicy(),
		money:        money.NewFormatter(shop.Locale),
		logger:       logger,
		now:          time.Now,
	}
}

// SendContact forwards a contact form message to the shop
func (s *Service) SendContact(ctx context.Context, req *ContactRequest) error {
	clean := ContactRequest{
		Name:    s.clean(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   s.clean(req.Phone),
		Subject: s.clean(req.Subject),
		Message: s.clean(req.Message),
	}

	subject := "Nouveau message de " + clean.Name
	if clean.Subject != "" {
		subject = "Contact : " + clean.Subject
	}

	msg, err := s.render(MessageTypeContact, contactData{shopData: s.shopData(), ContactRequest: clean})
	if err != nil {
		return err
	}
	msg.To = []string{s.contactEmail}
	msg.ReplyTo = clean.Email
	msg.Subject = subject

	return s.send(ctx, msg)
}

// SendQuote forwards a quote request to the shop
func (s *Service) SendQuote(ctx context.Context, req *QuoteRequest) error {
	clean := QuoteRequest{
		Name:      s.clean(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     s.clean(req.Phone),
		Company:   s.clean(req.Company),
		Product:   s.clean(req.Product),
		Quantity:  req.Quantity,
		Technique: s.clean(req.Technique),
		Deadline:  s.clean(req.Deadline),
		Message:   s.clean(req.Message),
	}

	msg, err := s.render(MessageTypeQuote, quoteData{shopData: s.shopData(), QuoteRequest: clean})
	if err != nil {
		return err
	}
	msg.To = []string{s.contactEmail}
	msg.ReplyTo = clean.Email
	msg.Subject = fmt.Sprintf("Demande de devis : %d pièces (%s)", clean.Quantity, clean.Name)

	return s.send(ctx, msg)
}

// SendOrderConfirmation e-mails the order summary to the customer.
// Failures are logged and reported as false; they never fail the caller.
func (s *Service) SendOrderConfirmation(ctx context.Context, o *order.Order, to customer.Contact) bool {
	log := s.logger.WithField("order_id", o.ID)
	if to.Email == "" {
		log.Warn("Order confirmation skipped: no recipient")
		return false
	}

	msg, err := s.render(MessageTypeOrderConfirmation, s.orderData(o, to))
	if err != nil {
		log.WithError(err).Error("Failed to render order confirmation")
		return false
	}
	msg.To = []string{to.Email}
	msg.ReplyTo = s.contactEmail
	msg.Subject = fmt.Sprintf("Confirmation de votre commande %s", o.Reference())

	if err := s.send(ctx, msg); err != nil {
		log.WithError(err).Error("Failed to send order confirmation")
		return false
	}

	log.WithField("to", to.Email).Info("Order confirmation sent")
	return true
}

func (s *Service) orderData(o *order.Order, to customer.Contact) orderData {
	data := orderData{
		shopData:     s.shopData(),
		CustomerName: s.clean(to.Name),
		Reference:    o.Reference(),
		OrderDate:    o.CreatedAt.Format("02/01/2006"),
		Subtotal:     s.money.Format(o.Subtotal(), o.Currency),
		Shipping:     s.money.Format(o.ShippingCost, o.Currency),
		Total:        s.money.Format(o.TotalAmount, o.Currency),
	}
	if o.CreatedAt.IsZero() {
		data.OrderDate = s.now().Format("02/01/2006")
	}

	for _, it := range o.Items {
		variant := strings.Trim(strings.Join([]string{it.Size, it.Color}, " / "), " /")
		data.Lines = append(data.Lines, orderLine{
			Name:          it.Name,
			Variant:       variant,
			Customization: it.CustomizationData.Summary(),
			Quantity:      it.Quantity,
			UnitPrice:     s.money.Format(it.PricePerUnit, o.Currency),
			LineTotal:     s.money.Format(it.LineTotal(), o.Currency),
		})
	}

	if a := o.ShippingAddress; a != nil {
		for _, line := range []string{a.Name, a.Line1, a.Line2, strings.TrimSpace(a.PostalCode + " " + a.City), a.Country} {
			if line != "" {
				data.Address = append(data.Address, line)
			}
		}
	}
	return data
}

func (s *Service) render(kind MessageType, data interface{}) (*Message, error) {
	tmpl, ok := s.templates[kind]
	if !ok {
		return nil, fmt.Errorf("no template for %s", kind)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := tmpl.html.ExecuteTemplate(&htmlBuf, "layout", data); err != nil {
		return nil, fmt.Errorf("failed to render %s email: %w", kind, err)
	}
	if err := tmpl.text.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s email: %w", kind, err)
	}

	return &Message{
		From: s.from,
		HTML: htmlBuf.String(),
		Text: textBuf.String(),
		Type: kind,
	}, nil
}

func (s *Service) send(ctx context.Context, msg *Message) error {
	if err := s.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s email: %w", msg.Type, err)
	}
	return nil
}

func (s *Service) shopData() shopData {
	return shopData{ShopName: s.shop.Name, ShopURL: s.shop.URL, Year: s.now().Year()}
}

// clean strips markup from customer supplied text. The templates escape
// on output so entities added by the sanitizer are decoded again.
func (s *Service) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(v)))
}
