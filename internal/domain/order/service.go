// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service handles order business logic
type Service struct {
	repo   Repository
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewService creates a new order service
func NewService(repo Repository, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ListRequest represents order list request parameters
type ListRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`

	// UserID restricts the listing to one customer
	UserID *uuid.UUID `form:"-"`
}

// ListResponse represents paginated order list response
type ListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

// Create stores a new pending order with its items. The total is the item
// subtotal plus the shipping cost.
func (s *Service) Create(ctx context.Context, o *Order) error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, it := range o.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("invalid quantity %d for %s", it.Quantity, it.Name)
		}
	}

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	o.Status = StatusPending
	o.TotalAmount = o.Subtotal() + o.ShippingCost

	if err := s.repo.CreateWithItems(ctx, o); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"total":    o.TotalAmount,
		"items":    len(o.Items),
	}).Info("pending order created")
	return nil
}

// Get retrieves an order by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByCheckoutSession retrieves the order of a payment session
func (s *Service) GetByCheckoutSession(ctx context.Context, sessionID string) (*Order, error) {
	return s.repo.FindByCheckoutSession(ctx, sessionID)
}

// GetByPaymentIntent retrieves the order of a payment intent
func (s *Service) GetByPaymentIntent(ctx context.Context, intentID string) (*Order, error) {
	return s.repo.FindByPaymentIntent(ctx, intentID)
}

// List retrieves orders with pagination
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	filter := ListFilter{
		UserID: req.UserID,
		Offset: (req.Page - 1) * req.Limit,
		Limit:  req.Limit,
	}
	if req.Status != "" {
		st, err := ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &ListResponse{
		Orders:     orders,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int((total + int64(req.Limit) - 1) / int64(req.Limit)),
	}, nil
}

// AttachPayment stores the payment session and intent identifiers
func (s *Service) AttachPayment(ctx context.Context, id uuid.UUID, sessionID, intentID string) error {
	_, err := s.repo.Update(ctx, id, func(o *Order) (bool, error) {
		changed := false
		if sessionID != "" && o.CheckoutSessionID != sessionID {
			o.CheckoutSessionID = sessionID
			changed = true
		}
		if intentID != "" && o.PaymentIntentID != intentID {
			o.PaymentIntentID = intentID
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return fmt.Errorf("failed to attach payment to order: %w", err)
	}
	return nil
}

// Transition moves an order to a new status if the status machine allows
// it. mutate, when given, runs in the same locked update whether or not the
// status changes. It reports whether the status changed.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to Status, source Source, note string, mutate func(o *Order) bool) (*Order, bool, error) {
	applied := false
	o, err := s.repo.Update(ctx, id, func(o *Order) (bool, error) {
		changed := false
		if mutate != nil {
			changed = mutate(o)
		}
		from := o.Status
		if o.TransitionTo(to, source, note) {
			applied = true
			changed = true
			if to == StatusProcessing && o.PaidAt == nil {
				now := s.now().UTC()
				o.PaidAt = &now
			}
		} else if from != to {
			s.logger.WithFields(logrus.Fields{
				"order_id": o.ID,
				"from":     from,
				"to":       to,
				"source":   source,
			}).Info("order status transition ignored")
		}
		return changed, nil
	})
	if err != nil {
		return nil, false, err
	}
	return o, applied, nil
}

// UpdateStatus applies an administrative status change. Requesting the
// current status is a no-op; an unreachable status is refused.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status, note string) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == to {
		return o, nil
	}
	if !CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, to)
	}

	updated, applied, err := s.Transition(ctx, id, to, SourceAdmin, note, nil)
	if err != nil {
		return nil, err
	}
	if !applied {
		// status moved concurrently
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, updated.Status, to)
	}
	return updated, nil
}

// AssignUser sets the order owner when none is recorded yet. An existing
// owner is never replaced. It reports whether the owner was set.
func (s *Service) AssignUser(ctx context.Context, id, userID uuid.UUID) (*Order, bool, error) {
	assigned := false
	o, err := s.repo.Update(ctx, id, func(o *Order) (bool, error) {
		if o.UserID != nil {
			return false, nil
		}
		uid := userID
		o.UserID = &uid
		assigned = true
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return o, assigned, nil
}

// ClaimConfirmation marks the confirmation e-mail as sent. Only the first
// caller gets true, so concurrent payment paths send at most once.
func (s *Service) ClaimConfirmation(ctx context.Context, id uuid.UUID) (*Order, bool, error) {
	claimed := false
	o, err := s.repo.Update(ctx, id, func(o *Order) (bool, error) {
		if o.ConfirmationSentAt != nil {
			return false, nil
		}
		now := s.now().UTC()
		o.ConfirmationSentAt = &now
		claimed = true
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return o, claimed, nil
}

// ReleaseConfirmation clears a claim after a failed send so a later path can retry
func (s *Service) ReleaseConfirmation(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.Update(ctx, id, func(o *Order) (bool, error) {
		if o.ConfirmationSentAt == nil {
			return false, nil
		}
		o.ConfirmationSentAt = nil
		return true, nil
	})
	return err
}

// SetContact fills in the customer e-mail and name when missing
func SetContact(o *Order, email, name string) bool {
	changed := false
	if o.Email == "" && strings.TrimSpace(email) != "" {
		o.Email = strings.TrimSpace(email)
		changed = true
	}
	if o.CustomerName == "" && strings.TrimSpace(name) != "" {
		o.CustomerName = strings.TrimSpace(name)
		changed = true
	}
	return changed
}

// IsNotFound reports whether err means the order does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
