package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/atelier-textile/storefront-api/internal/domain/customization"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapPersister struct {
	carts map[string][]Item
	saves int
}

func (m *mapPersister) Load(_ context.Context, sessionID string) ([]Item, error) {
	return append([]Item(nil), m.carts[sessionID]...), nil
}

func (m *mapPersister) Save(_ context.Context, sessionID string, items []Item) error {
	m.carts[sessionID] = append([]Item(nil), items...)
	m.saves++
	return nil
}

func (m *mapPersister) Delete(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

func openTestStore(t *testing.T) (*Store, *mapPersister) {
	t.Helper()
	p := &mapPersister{carts: make(map[string][]Item)}
	s, err := Open(context.Background(), "sess-1", p)
	require.NoError(t, err)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
	return s, p
}

func textCustomization(text string) *customization.Customization {
	return &customization.Customization{Customizations: []customization.Descriptor{
		{Face: "front", Technique: customization.TechniqueFlock, Position: "centre", Content: customization.ContentText, Text: text},
	}}
}

func TestAddMergesPlainLines(t *testing.T) {
	s, p := openTestStore(t)
	ctx := context.Background()
	productID := uuid.New()

	_, err := s.Add(ctx, Item{ProductID: productID, Size: "M", Color: "Noir", UnitPrice: 1000, Quantity: 1})
	require.NoError(t, err)
	line, err := s.Add(ctx, Item{ProductID: productID, Size: "M", Color: "Noir", UnitPrice: 1000, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, "line-1", line.ID)
	assert.Equal(t, 3, line.Quantity)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 2, p.saves)
	assert.Len(t, p.carts["sess-1"], 1)

	_, err = s.Add(ctx, Item{ProductID: productID, Size: "L", Color: "Noir", UnitPrice: 1000, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, s.Items(), 2)
}

func TestAddKeepsCustomizedLinesDistinct(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	productID := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := s.Add(ctx, Item{ProductID: productID, Size: "M", UnitPrice: 1700, Quantity: 1, Customization: textCustomization("Team")})
		require.NoError(t, err)
	}
	_, err := s.Add(ctx, Item{ProductID: productID, Size: "M", UnitPrice: 1000, Quantity: 1})
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 3)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestAddRejectsZeroQuantity(t *testing.T) {
	s, p := openTestStore(t)

	_, err := s.Add(context.Background(), Item{ProductID: uuid.New(), Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Zero(t, p.saves)
}

func TestRemoveMatchingNeverCrossesCustomization(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	productID := uuid.New()

	_, err := s.Add(ctx, Item{ProductID: productID, Size: "M", UnitPrice: 1700, Quantity: 1, Customization: textCustomization("Team")})
	require.NoError(t, err)

	err = s.RemoveMatching(ctx, MatchKey{ProductID: productID, Size: "M"})
	require.ErrorIs(t, err, ErrLineNotFound)

	err = s.RemoveMatching(ctx, MatchKey{ProductID: productID, Size: "M", Customization: textCustomization("Other")})
	require.ErrorIs(t, err, ErrLineNotFound)

	require.NoError(t, s.RemoveMatching(ctx, MatchKey{ProductID: productID, Size: "M", Customization: textCustomization("Team")}))
	assert.Empty(t, s.Items())
}

func TestUpdateQuantity(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	line, err := s.Add(ctx, Item{ProductID: uuid.New(), UnitPrice: 500, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, s.UpdateQuantity(ctx, line.ID, 4))
	assert.Equal(t, 4, s.Items()[0].Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, line.ID, 0))
	assert.Empty(t, s.Items())

	require.ErrorIs(t, s.UpdateQuantity(ctx, "missing", 2), ErrLineNotFound)
	require.ErrorIs(t, s.Remove(ctx, "missing"), ErrLineNotFound)
}

func TestTotals(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, Item{ProductID: uuid.New(), UnitPrice: 10, Quantity: 2})
	require.NoError(t, err)
	_, err = s.Add(ctx, Item{ProductID: uuid.New(), UnitPrice: 5, Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, int64(35), s.Total())
	assert.Equal(t, Totals{ItemCount: 2, TotalQuantity: 5, SubTotal: 35}, s.Totals())
}

func TestClearAndReload(t *testing.T) {
	s, p := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, Item{ProductID: uuid.New(), UnitPrice: 10, Quantity: 1})
	require.NoError(t, err)

	reopened, err := Open(ctx, "sess-1", p)
	require.NoError(t, err)
	assert.Len(t, reopened.Items(), 1)

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Items())
	_, ok := p.carts["sess-1"]
	assert.False(t, ok)
}
