// internal/pkg/email/types.go
package email

import (
	"context"
	"errors"
)

// MessageType represents the kind of e-mail being sent
type MessageType string

const (
	MessageTypeContact           MessageType = "contact"
	MessageTypeQuote             MessageType = "quote"
	MessageTypeOrderConfirmation MessageType = "order_confirmation"
)

// ErrNoRecipient is returned when a message has no destination address
var ErrNoRecipient = errors.New("email has no recipient")

// Message is a rendered e-mail ready for delivery
type Message struct {
	From    string      `json:"from"`
	To      []string    `json:"to"`
	ReplyTo string      `json:"reply_to,omitempty"`
	Subject string      `json:"subject"`
	HTML    string      `json:"html"`
	Text    string      `json:"text,omitempty"`
	Type    MessageType `json:"type"`
}

// Transport delivers rendered messages
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// ContactRequest is a message left through the contact form
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=120"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"max=30"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// QuoteRequest is a bulk order quote request
type QuoteRequest struct {
	Name      string `json:"name" binding:"required,max=120"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"max=30"`
	Company   string `json:"company" binding:"max=200"`
	Product   string `json:"product" binding:"max=200"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Technique string `json:"technique" binding:"max=50"`
	Deadline  string `json:"deadline" binding:"max=50"`
	Message   string `json:"message" binding:"max=5000"`
}

// shopData is shared by every template
type shopData struct {
	ShopName string
	ShopURL  string
	Year     int
}

type contactData struct {
	shopData
	ContactRequest
}

type quoteData struct {
	shopData
	QuoteRequest
}

type orderLine struct {
	Name          string
	Variant       string
	Customization string
	Quantity      int
	UnitPrice     string
	LineTotal     string
}

type orderData struct {
	shopData
	CustomerName string
	Reference    string
	OrderDate    string
	Lines        []orderLine
	Subtotal     string
	Shipping     string
	Total        string
	Address      []string
}
