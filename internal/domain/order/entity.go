// internal/domain/order/entity.go
package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atelier-textile/storefront-api/internal/domain/customization"
	"github.com/google/uuid"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// Source records who requested a status change
type Source string

const (
	SourceCheckout  Source = "checkout"
	SourceWebhook   Source = "webhook"
	SourceReconcile Source = "reconcile"
	SourceAdmin     Source = "admin"
)

// Order represents the order entity
type Order struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for guest orders
	Email             string     `gorm:"size:255" json:"email"`
	CustomerName      string     `gorm:"size:255" json:"customer_name"`
	Status            Status     `gorm:"not null;default:'pending';index" json:"status"`
	TotalAmount       int64      `gorm:"not null" json:"total_amount"` // In cents, shipping included
	ShippingCost      int64      `gorm:"not null;default:0" json:"shipping_cost"`
	Currency          string     `gorm:"size:3;default:'eur'" json:"currency"`
	PaymentIntentID   string     `gorm:"size:255;index" json:"payment_intent_id,omitempty"`
	CheckoutSessionID string     `gorm:"size:255;index" json:"checkout_session_id,omitempty"`
	ShippingAddress   *Address   `gorm:"type:jsonb" json:"shipping_address,omitempty"`

	ConfirmationSentAt *time.Time `json:"confirmation_sent_at,omitempty"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Relationships
	Items         []Item          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"items"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`

	// PendingHistory holds transitions not yet written by the repository
	PendingHistory []StatusHistory `gorm:"-" json:"-"`
}

// Item represents a line of an order. Items are immutable once created.
type Item struct {
	ID                uint                         `gorm:"primaryKey" json:"id"`
	OrderID           uuid.UUID                    `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID         uuid.UUID                    `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductVariantID  *uuid.UUID                   `gorm:"type:uuid;index" json:"product_variant_id"`
	Name              string                       `gorm:"size:255" json:"name"`
	Quantity          int                          `gorm:"not null" json:"quantity"`
	PricePerUnit      int64                        `gorm:"not null" json:"price_per_unit"` // In cents, customization included
	Size              string                       `gorm:"size:20" json:"size,omitempty"`
	Color             string                       `gorm:"size:50" json:"color,omitempty"`
	CustomizationData *customization.Customization `gorm:"type:jsonb" json:"customization_data,omitempty"`
	CreatedAt         time.Time                    `json:"created_at"`
}

// StatusHistory tracks order status changes
type StatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	From      Status    `gorm:"size:20" json:"from"`
	To        Status    `gorm:"size:20;not null" json:"to"`
	Source    Source    `gorm:"size:20" json:"source"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Address is the normalized shipping address stored as jsonb
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (Item) TableName() string          { return "order_items" }
func (StatusHistory) TableName() string { return "order_status_history" }

// Subtotal returns the sum of the item lines
func (o *Order) Subtotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.LineTotal()
	}
	return total
}

// LineTotal returns quantity times unit price
func (i Item) LineTotal() int64 {
	return i.PricePerUnit * int64(i.Quantity)
}

// IsGuest reports whether no user account is attached
func (o *Order) IsGuest() bool {
	return o.UserID == nil
}

// Reference returns a short human readable order reference
func (o *Order) Reference() string {
	return fmt.Sprintf("CMD-%s", o.ID.String()[:8])
}

// TransitionTo moves the order to the given status when the status machine
// allows it and queues a history entry. It reports whether anything changed.
func (o *Order) TransitionTo(to Status, source Source, note string) bool {
	if !CanTransition(o.Status, to) {
		return false
	}
	o.PendingHistory = append(o.PendingHistory, StatusHistory{
		OrderID:   o.ID,
		From:      o.Status,
		To:        to,
		Source:    source,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	})
	o.Status = to
	return true
}

// Value implements driver.Valuer
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*a = Address{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("address: unsupported scan type %T", value)
	}
}
