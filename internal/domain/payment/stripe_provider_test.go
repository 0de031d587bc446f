package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
)

type fakeSessions struct {
	created *stripe.CheckoutSessionParams
	newResp *stripe.CheckoutSession
	newErr  error
	getID   string
	getResp *stripe.CheckoutSession
}

func (f *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.created = params
	return f.newResp, f.newErr
}

func (f *fakeSessions) Get(id string, _ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.getID = id
	return f.getResp, nil
}

func (f *fakeSessions) ListLineItems(*stripe.CheckoutSessionListLineItemsParams) *session.LineItemIter {
	return nil
}

func newTestProvider(t *testing.T, api *fakeSessions) *StripeProvider {
	t.Helper()
	logger, _ := test.NewNullLogger()
	p, err := NewStripeProvider(StripeProviderConfig{Sessions: api, Logger: logger})
	require.NoError(t, err)
	return p
}

func TestNewStripeProviderRequiresKey(t *testing.T) {
	_, err := NewStripeProvider(StripeProviderConfig{})
	require.Error(t, err)
}

func TestCreateCheckoutSessionBuildsParams(t *testing.T) {
	api := &fakeSessions{newResp: &stripe.CheckoutSession{
		ID:            "cs_test_1",
		URL:           "https://checkout.stripe.com/c/pay/cs_test_1",
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
	}}
	p := newTestProvider(t, api)

	sess, err := p.CreateCheckoutSession(context.Background(), SessionRequest{
		Items: []LineItem{
			{Name: "T-shirt brodé", Description: "M / Noir", UnitAmount: 2700, Quantity: 2},
			{Name: "Livraison", UnitAmount: 590, Quantity: 1},
		},
		Currency:         "EUR",
		SuccessURL:       "https://shop/ok",
		CancelURL:        "https://shop/cancel",
		CustomerEmail:    "jane@example.com",
		AllowedCountries: []string{"FR", "BE"},
		Metadata:         map[string]string{MetadataOrderID: "ord-1", MetadataUserID: GuestUserID},
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", sess.URL)
	assert.Equal(t, "pi_1", sess.PaymentIntentID)

	params := api.created
	require.NotNil(t, params)
	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "jane@example.com", *params.CustomerEmail)
	require.Len(t, params.LineItems, 2)
	assert.Equal(t, int64(2700), *params.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, int64(2), *params.LineItems[0].Quantity)
	assert.Equal(t, "eur", *params.LineItems[0].PriceData.Currency)
	assert.Equal(t, "M / Noir", *params.LineItems[0].PriceData.ProductData.Description)
	assert.Equal(t, "Livraison", *params.LineItems[1].PriceData.ProductData.Name)
	require.NotNil(t, params.ShippingAddressCollection)
	assert.Equal(t, []*string{stripe.String("FR"), stripe.String("BE")}, params.ShippingAddressCollection.AllowedCountries)
	assert.Equal(t, "ord-1", params.Metadata[MetadataOrderID])
	assert.Equal(t, GuestUserID, params.PaymentIntentData.Metadata[MetadataUserID])
}

func TestCreateCheckoutSessionWrapsErrors(t *testing.T) {
	api := &fakeSessions{newErr: errors.New("card declined")}
	p := newTestProvider(t, api)

	_, err := p.CreateCheckoutSession(context.Background(), SessionRequest{Currency: "eur"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe: create checkout session")
}

func TestGetCheckoutSessionMapsCustomerAndShipping(t *testing.T) {
	api := &fakeSessions{getResp: &stripe.CheckoutSession{
		ID:            "cs_2",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   3290,
		Metadata:      map[string]string{MetadataOrderID: "ord-2"},
		CustomerEmail: "prefill@example.com",
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "billing@example.com",
			Name:  "Jane Doe",
		},
		ShippingDetails: &stripe.ShippingDetails{
			Name: "Jane Doe",
			Address: &stripe.Address{
				Line1:      "1 rue de la Paix",
				City:       "Paris",
				PostalCode: "75002",
				Country:    "FR",
			},
		},
	}}
	p := newTestProvider(t, api)

	sess, err := p.GetCheckoutSession(context.Background(), "cs_2")
	require.NoError(t, err)

	assert.Equal(t, "cs_2", api.getID)
	assert.True(t, sess.IsPaid())
	assert.Equal(t, "billing@example.com", sess.CustomerEmail)
	assert.Equal(t, "Jane Doe", sess.CustomerName)
	require.NotNil(t, sess.Shipping)
	assert.Equal(t, "Paris", sess.Shipping.City)
	assert.Equal(t, "ord-2", sess.Metadata[MetadataOrderID])
}
