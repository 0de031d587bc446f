package order_test

import (
	"context"
	"testing"

	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService(t *testing.T) (*order.Service, *testutil.OrderRepository) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := testutil.NewOrderRepository()
	return order.NewService(repo, logger), repo
}

func createOrder(t *testing.T, svc *order.Service) *order.Order {
	t.Helper()
	o := &order.Order{
		ShippingCost: 590,
		Items: []order.Item{
			{ProductID: uuid.New(), Name: "T-shirt", Quantity: 2, PricePerUnit: 1000},
			{ProductID: uuid.New(), Name: "Tote bag", Quantity: 3, PricePerUnit: 500},
		},
	}
	require.NoError(t, svc.Create(context.Background(), o))
	return o
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to order.Status
		want     bool
	}{
		{order.StatusPending, order.StatusProcessing, true},
		{order.StatusPending, order.StatusFailed, true},
		{order.StatusPending, order.StatusCancelled, true},
		{order.StatusPending, order.StatusShipped, false},
		{order.StatusPending, order.StatusPending, false},
		{order.StatusFailed, order.StatusProcessing, true},
		{order.StatusProcessing, order.StatusShipped, true},
		{order.StatusProcessing, order.StatusPending, false},
		{order.StatusProcessing, order.StatusFailed, false},
		{order.StatusShipped, order.StatusDelivered, true},
		{order.StatusShipped, order.StatusCancelled, false},
		{order.StatusDelivered, order.StatusCompleted, true},
		{order.StatusCompleted, order.StatusCancelled, false},
		{order.StatusCancelled, order.StatusProcessing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, order.CanTransition(tt.from, tt.to))
		})
	}

	assert.True(t, order.StatusCompleted.IsTerminal())
	assert.True(t, order.StatusCancelled.IsTerminal())
	assert.False(t, order.StatusShipped.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	st, err := order.ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, st)

	_, err = order.ParseStatus("lost")
	require.ErrorIs(t, err, order.ErrUnknownStatus)
}

func TestCreateComputesTotal(t *testing.T) {
	svc, _ := newOrderService(t)
	o := createOrder(t, svc)

	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, int64(2*1000+3*500), o.Subtotal())
	assert.Equal(t, int64(3500+590), o.TotalAmount)
	assert.Equal(t, o.ID, o.Items[0].OrderID)
	assert.Regexp(t, `^CMD-[0-9a-f]{8}$`, o.Reference())
}

func TestCreateRejectsEmptyOrder(t *testing.T) {
	svc, repo := newOrderService(t)

	err := svc.Create(context.Background(), &order.Order{})
	require.ErrorIs(t, err, order.ErrNoItems)
	assert.Zero(t, repo.Len())

	err = svc.Create(context.Background(), &order.Order{Items: []order.Item{{Name: "x", Quantity: 0}}})
	require.Error(t, err)
}

func TestTransitionAppliesOnceAndRecordsHistory(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	o := createOrder(t, svc)

	updated, applied, err := svc.Transition(ctx, o.ID, order.StatusProcessing, order.SourceWebhook, "paid", nil)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, order.StatusProcessing, updated.Status)
	assert.NotNil(t, updated.PaidAt)
	require.Len(t, updated.StatusHistory, 1)
	assert.Equal(t, order.StatusPending, updated.StatusHistory[0].From)

	again, applied, err := svc.Transition(ctx, o.ID, order.StatusProcessing, order.SourceReconcile, "", nil)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, order.StatusProcessing, again.Status)
	assert.Len(t, again.StatusHistory, 1)

	// a late failure notice cannot move a paid order backwards
	late, applied, err := svc.Transition(ctx, o.ID, order.StatusFailed, order.SourceWebhook, "", nil)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, order.StatusProcessing, late.Status)
}

func TestTransitionRunsMutateWithoutStatusChange(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	o := createOrder(t, svc)
	_, _, err := svc.Transition(ctx, o.ID, order.StatusCancelled, order.SourceAdmin, "", nil)
	require.NoError(t, err)

	updated, applied, err := svc.Transition(ctx, o.ID, order.StatusProcessing, order.SourceWebhook, "", func(o *order.Order) bool {
		return order.SetContact(o, " jane@example.com ", "Jane")
	})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, order.StatusCancelled, updated.Status)
	assert.Equal(t, "jane@example.com", updated.Email)
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	o := createOrder(t, svc)

	same, err := svc.UpdateStatus(ctx, o.ID, order.StatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, same.Status)
	assert.Empty(t, same.StatusHistory)

	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusShipped, "")
	require.ErrorIs(t, err, order.ErrInvalidTransition)

	for _, st := range []order.Status{order.StatusProcessing, order.StatusShipped, order.StatusDelivered, order.StatusCompleted} {
		updated, err := svc.UpdateStatus(ctx, o.ID, st, "colis remis")
		require.NoError(t, err)
		assert.Equal(t, st, updated.Status)
	}

	final, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, final.StatusHistory, 4)
	assert.Equal(t, order.SourceAdmin, final.StatusHistory[3].Source)

	_, err = svc.UpdateStatus(ctx, uuid.New(), order.StatusProcessing, "")
	require.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.True(t, order.IsNotFound(err))
}

func TestAssignUserIsSetOnce(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	o := createOrder(t, svc)
	userA, userB := uuid.New(), uuid.New()

	updated, assigned, err := svc.AssignUser(ctx, o.ID, userA)
	require.NoError(t, err)
	assert.True(t, assigned)
	assert.Equal(t, userA, *updated.UserID)

	updated, assigned, err = svc.AssignUser(ctx, o.ID, userB)
	require.NoError(t, err)
	assert.False(t, assigned)
	assert.Equal(t, userA, *updated.UserID)
}

func TestClaimConfirmation(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	o := createOrder(t, svc)

	_, claimed, err := svc.ClaimConfirmation(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	_, claimed, err = svc.ClaimConfirmation(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, svc.ReleaseConfirmation(ctx, o.ID))
	_, claimed, err = svc.ClaimConfirmation(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestListFiltersByStatusAndUser(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	userID := uuid.New()

	first := createOrder(t, svc)
	createOrder(t, svc)
	_, _, err := svc.AssignUser(ctx, first.ID, userID)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, order.StatusProcessing, "")
	require.NoError(t, err)

	res, err := svc.List(ctx, &order.ListRequest{Status: "processing"})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, first.ID, res.Orders[0].ID)

	mine, err := svc.List(ctx, &order.ListRequest{UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)

	_, err = svc.List(ctx, &order.ListRequest{Status: "lost"})
	require.Error(t, err)
}

func TestAddressScan(t *testing.T) {
	var a order.Address
	require.NoError(t, a.Scan([]byte(`{"name":"Jane","line1":"1 rue","city":"Paris","postal_code":"75001","country":"FR"}`)))
	assert.Equal(t, "Paris", a.City)
	require.Error(t, a.Scan(42))
}
