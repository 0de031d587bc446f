// internal/domain/cart/records.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned when no persisted cart exists
var ErrRecordNotFound = errors.New("cart record not found")

// RecordRepository persists cart records
type RecordRepository interface {
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*Record, error)
	Create(ctx context.Context, record *Record) error
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []RecordItem) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}

// RecordService keeps the persisted cart mirror in sync with checkouts
type RecordService struct {
	repo RecordRepository
}

// NewRecordService creates a new record service
func NewRecordService(repo RecordRepository) *RecordService {
	return &RecordService{repo: repo}
}

// Sync stores the lines being checked out. A known user's latest cart has
// its items replaced; otherwise a new session-scoped cart is created.
func (s *RecordService) Sync(ctx context.Context, userID *uuid.UUID, sessionID string, items []Item) (*Record, error) {
	if userID != nil {
		existing, err := s.repo.FindLatestByUser(ctx, *userID)
		switch {
		case err == nil:
			lines := RecordItemsFrom(existing.ID, items)
			if err := s.repo.ReplaceItems(ctx, existing.ID, lines); err != nil {
				return nil, fmt.Errorf("failed to replace cart items: %w", err)
			}
			existing.Items = lines
			return existing, nil
		case !errors.Is(err, ErrRecordNotFound):
			return nil, fmt.Errorf("failed to find user cart: %w", err)
		}
	}

	record := &Record{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
	}
	record.Items = RecordItemsFrom(record.ID, items)
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return record, nil
}

// ClearForUser deletes every persisted cart of a user. Deleting carts that
// are already gone is a no-op.
func (s *RecordService) ClearForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user carts: %w", err)
	}
	return n, nil
}

// ClearForSession deletes the persisted carts recorded for a browser session
func (s *RecordService) ClearForSession(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, nil
	}
	n, err := s.repo.DeleteBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete session carts: %w", err)
	}
	return n, nil
}
