// internal/domain/cart/store.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrLineNotFound is returned when a cart line id is unknown
var ErrLineNotFound = errors.New("cart line not found")

// ErrInvalidQuantity is returned when a line is added with quantity < 1
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Persister saves the full line list of a cart session
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]Item, error)
	Save(ctx context.Context, sessionID string, items []Item) error
	Delete(ctx context.Context, sessionID string) error
}

// Store is the line list of one cart session. Every mutation is written
// through to the persister; concurrent writers race and the last save wins.
type Store struct {
	sessionID string
	items     []Item
	persister Persister
	newID     func() string
	now       func() time.Time
}

// Open loads the cart of a session once
func Open(ctx context.Context, sessionID string, p Persister) (*Store, error) {
	items, err := p.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &Store{
		sessionID: sessionID,
		items:     items,
		persister: p,
		newID:     func() string { return ulid.Make().String() },
		now:       time.Now,
	}, nil
}

// SessionID returns the cart session id
func (s *Store) SessionID() string {
	return s.sessionID
}

// Items returns a copy of the cart lines
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Add merges the item into an existing plain line with the same key or
// appends it as a new line. Customized items always become new lines.
func (s *Store) Add(ctx context.Context, item Item) (Item, error) {
	if item.Quantity < 1 {
		return Item{}, ErrInvalidQuantity
	}

	if !item.IsCustomized() {
		key := KeyOf(item)
		for i := range s.items {
			if key.matches(s.items[i]) {
				s.items[i].Quantity += item.Quantity
				return s.items[i], s.save(ctx)
			}
		}
	}

	item.ID = s.newID()
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now().UTC()
	}
	s.items = append(s.items, item)
	return item, s.save(ctx)
}

// Remove deletes the line with the given id
func (s *Store) Remove(ctx context.Context, lineID string) error {
	idx := s.indexOf(lineID)
	if idx < 0 {
		return ErrLineNotFound
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return s.save(ctx)
}

// RemoveMatching deletes the first line matching the full key
func (s *Store) RemoveMatching(ctx context.Context, key MatchKey) error {
	for i := range s.items {
		if key.matches(s.items[i]) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.save(ctx)
		}
	}
	return ErrLineNotFound
}

// UpdateQuantity replaces the quantity of a line; qty <= 0 removes it
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, qty int) error {
	if qty <= 0 {
		return s.Remove(ctx, lineID)
	}
	idx := s.indexOf(lineID)
	if idx < 0 {
		return ErrLineNotFound
	}
	s.items[idx].Quantity = qty
	return s.save(ctx)
}

// Clear removes every line and the persisted value
func (s *Store) Clear(ctx context.Context) error {
	s.items = nil
	if err := s.persister.Delete(ctx, s.sessionID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Total returns the sum of unit price times quantity over all lines
func (s *Store) Total() int64 {
	var total int64
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

// Totals returns the cart summary
func (s *Store) Totals() Totals {
	t := Totals{ItemCount: len(s.items), SubTotal: s.Total()}
	for _, it := range s.items {
		t.TotalQuantity += it.Quantity
	}
	return t
}

func (s *Store) indexOf(lineID string) int {
	for i := range s.items {
		if s.items[i].ID == lineID {
			return i
		}
	}
	return -1
}

func (s *Store) save(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.sessionID, s.items); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
