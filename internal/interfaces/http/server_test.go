package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atelier-textile/storefront-api/internal/config"
	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/atelier-textile/storefront-api/internal/domain/checkout"
	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/payment"
	"github.com/atelier-textile/storefront-api/internal/domain/product"
	apphttp "github.com/atelier-textile/storefront-api/internal/interfaces/http"
	"github.com/atelier-textile/storefront-api/internal/interfaces/http/handlers"
	"github.com/atelier-textile/storefront-api/internal/interfaces/http/routes"
	"github.com/atelier-textile/storefront-api/internal/pkg/auth"
	"github.com/atelier-textile/storefront-api/internal/pkg/email"
	"github.com/atelier-textile/storefront-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	webhookSecret = "whsec_http_test"
	adminToken    = "admin-token-long-enough-for-tests"
	jwtSecret     = "jwt-secret-for-tests"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeInvoices struct{}

func (fakeInvoices) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	return bytes.NewBufferString("%PDF-1.4 " + o.Reference()), nil
}

type fakeCheck struct{ err error }

func (f fakeCheck) Health(context.Context) error { return f.err }

type harness struct {
	handler   http.Handler
	orders    *testutil.OrderRepository
	gateway   *testutil.Gateway
	directory *testutil.Directory
	mail      *email.LogTransport
	tokens    *auth.TokenVerifier
	catalog   *product.Service
	check     *fakeCheck
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()

	h := &harness{
		orders:    testutil.NewOrderRepository(),
		gateway:   testutil.NewGateway(),
		directory: testutil.NewDirectory(),
		mail:      email.NewLogTransport(logger),
		tokens:    auth.NewTokenVerifier(jwtSecret, ""),
		check:     &fakeCheck{},
	}

	productRepo := testutil.NewProductRepository()
	categories := product.NewCategoryService(productRepo)
	h.catalog = product.NewService(productRepo, categories, logger)
	carts := cart.NewService(testutil.NewCartPersister(), h.catalog, logger)
	orders := order.NewService(h.orders, logger)
	customers := customer.NewService(h.directory, logger)
	mailer := email.NewService(
		config.EmailConfig{FromEmail: "boutique@atelier.test", FromName: "Atelier", ContactEmail: "contact@atelier.test"},
		config.ShopConfig{Name: "Atelier", URL: "https://atelier.test", Locale: "fr-FR"},
		h.mail, logger,
	)

	checkoutSvc := checkout.NewService(checkout.Deps{
		Orders:       orders,
		Carts:        cart.NewRecordService(testutil.NewCartRecordRepository()),
		SessionCarts: carts,
		Customers:    customers,
		Gateway:      h.gateway,
		Pricer:       carts,
		Notifier:     mailer,
	}, checkout.Options{
		Currency:         "EUR",
		SuccessURL:       "https://atelier.test/commande/succes?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        "https://atelier.test/panier",
		AllowedCountries: []string{"FR"},
		ShippingFee:      590,
	}, logger)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "atelier", Version: "test", Environment: "test"},
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
	}

	server := apphttp.NewServer(cfg, apphttp.Options{
		Handlers: routes.Handlers{
			Cart:     handlers.NewCartHandler(carts, time.Hour, false, logger),
			Checkout: handlers.NewCheckoutHandler(checkoutSvc, carts, logger),
			Webhook:  handlers.NewWebhookHandler(payment.NewWebhookVerifier(webhookSecret), checkoutSvc, logger),
			Product:  handlers.NewProductHandler(h.catalog, categories, logger),
			Category: handlers.NewCategoryHandler(categories, logger),
			Order:    handlers.NewOrderHandler(orders, logger),
			Invoice:  handlers.NewInvoiceHandler(orders, fakeInvoices{}, logger),
			Profile:  handlers.NewUserProfileHandler(customers, logger),
			Contact:  handlers.NewContactHandler(mailer, logger),
		},
		Guards: routes.Guards{
			Tokens: h.tokens,
			Admin:  auth.NewAdminAuthenticator(adminToken, ""),
		},
		Checks: map[string]apphttp.HealthChecker{"database": h.check},
	}, logger)
	h.handler = server.Handler()
	return h
}

type request struct {
	method  string
	path    string
	body    any
	raw     []byte
	headers map[string]string
}

func (h *harness) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	body := r.raw
	if r.body != nil {
		var err error
		body, err = json.Marshal(r.body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(r.method, r.path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + adminToken}
}

func (h *harness) createProduct(t *testing.T) *product.Product {
	t.Helper()
	p, err := h.catalog.Create(context.Background(), &product.CreateRequest{
		Name:      "T-shirt coton bio",
		Slug:      "t-shirt-coton-bio",
		BasePrice: 2500,
	})
	require.NoError(t, err)
	return p
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)

	h.check.err = errors.New("connection refused")
	w = h.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database unavailable")

	w = h.do(t, request{method: http.MethodGet, path: "/ready"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/nowhere"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutWebhookAndAdminFlow(t *testing.T) {
	h := newHarness(t)
	p := h.createProduct(t)
	session := map[string]string{handlers.CartSessionHeader: uuid.NewString()}

	w := h.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", headers: session,
		body: map[string]any{"product_id": p.ID, "quantity": 2, "size": "M", "color": "Noir"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", headers: session, body: map[string]any{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result checkout.Result
	decode(t, w, &result)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", result.URL)

	created, err := h.orders.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, created.Status)
	assert.Equal(t, int64(2*2500+590), created.TotalAmount)

	cartSession := session[handlers.CartSessionHeader]
	require.Len(t, h.gateway.Requests, 1)
	assert.Equal(t, cartSession, h.gateway.Requests[0].Metadata[payment.MetadataCartSession])

	payload := testutil.StripeEvent(t, "evt_1", payment.EventCheckoutSessionCompleted,
		testutil.WithCartSession(testutil.CompletedSession("cs_test_1", result.OrderID.String(), "guest"), cartSession))
	signed := map[string]string{handlers.StripeSignatureHeader: testutil.SignStripePayload(payload, webhookSecret)}

	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/webhooks/stripe", raw: payload,
		headers: map[string]string{handlers.StripeSignatureHeader: "t=1,v1=deadbeef"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for i := 0; i < 2; i++ {
		w = h.do(t, request{method: http.MethodPost, path: "/api/v1/webhooks/stripe", raw: payload, headers: signed})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"received":true`)
	}

	paid, err := h.orders.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, paid.Status)
	require.Len(t, h.mail.Sent(), 1)
	assert.Equal(t, email.MessageTypeOrderConfirmation, h.mail.Sent()[0].Type)
	assert.Equal(t, []string{"client@example.com"}, h.mail.Sent()[0].To)

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/cart", headers: session})
	require.Equal(t, http.StatusOK, w.Code)
	var emptied struct {
		Data cart.View `json:"data"`
	}
	decode(t, w, &emptied)
	assert.Empty(t, emptied.Data.Items)

	statusPath := "/api/v1/admin/orders/" + result.OrderID.String() + "/status"
	w = h.do(t, request{method: http.MethodPatch, path: statusPath, body: map[string]string{"status": "shipped"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, request{method: http.MethodPatch, path: statusPath, headers: adminHeaders(), body: map[string]string{"status": "shipped"}})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, request{method: http.MethodPatch, path: statusPath, headers: adminHeaders(), body: map[string]string{"status": "pending"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, request{method: http.MethodPatch, path: statusPath, headers: adminHeaders(), body: map[string]string{"status": "lost"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/admin/orders/" + result.OrderID.String() + "/invoice", headers: adminHeaders()})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/admin/orders?status=shipped", headers: adminHeaders()})
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Data order.ListResponse `json:"data"`
	}
	decode(t, w, &listing)
	assert.Equal(t, int64(1), listing.Data.Total)

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/checkout/sessions/cs_test_1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"order"`)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", body: map[string]any{"items": []any{}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, h.orders.Len())
}

func TestWebhookWithoutOrderMetadata(t *testing.T) {
	h := newHarness(t)
	payload := testutil.StripeEvent(t, "evt_2", payment.EventCheckoutSessionCompleted,
		testutil.CompletedSession("cs_unknown", "", ""))

	w := h.do(t, request{method: http.MethodPost, path: "/api/v1/webhooks/stripe", raw: payload,
		headers: map[string]string{handlers.StripeSignatureHeader: testutil.SignStripePayload(payload, webhookSecret)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload = testutil.StripeEvent(t, "evt_3", payment.EventCheckoutSessionCompleted,
		testutil.CompletedSession("cs_unknown", uuid.NewString(), "guest"))
	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/webhooks/stripe", raw: payload,
		headers: map[string]string{handlers.StripeSignatureHeader: testutil.SignStripePayload(payload, webhookSecret)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileRequiresPaidSession(t *testing.T) {
	h := newHarness(t)
	p := h.createProduct(t)

	w := h.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", body: map[string]any{
		"items": []map[string]any{{"product_id": p.ID, "quantity": 1}},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/orders/status", body: map[string]string{"sessionId": "cs_test_1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h.gateway.MarkPaid("cs_test_1")
	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/orders/status", body: map[string]string{"sessionId": "cs_test_1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res checkout.ReconcileResult
	decode(t, w, &res)
	assert.True(t, res.Success)
	assert.Equal(t, order.StatusProcessing, res.Order.Status)

	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/orders/status", body: map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogRoutes(t *testing.T) {
	h := newHarness(t)
	p := h.createProduct(t)

	w := h.do(t, request{method: http.MethodGet, path: "/api/v1/products"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), p.Slug)

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/products/" + p.Slug})
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/products/nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/admin/categories", headers: adminHeaders(), body: map[string]any{"name": "Hauts"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data product.Category `json:"data"`
	}
	decode(t, w, &created)

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/categories/" + created.Data.ID.String() + "/path"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/categories/not-a-uuid/path"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, request{method: http.MethodDelete, path: "/api/v1/admin/products/" + p.ID.String(), headers: adminHeaders()})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"soft_deleted":false`)

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/admin/exports/catalog.xlsx", headers: adminHeaders()})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartPriceQuote(t *testing.T) {
	h := newHarness(t)
	p := h.createProduct(t)

	w := h.do(t, request{method: http.MethodPost, path: "/api/v1/cart/price", body: map[string]any{"product_id": p.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote struct {
		Data cart.Quote `json:"data"`
	}
	decode(t, w, &quote)
	assert.Equal(t, int64(2500), quote.Data.UnitPrice)

	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", body: map[string]any{"product_id": uuid.New(), "quantity": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Header().Get(handlers.CartSessionHeader))

	w = h.do(t, request{method: http.MethodDelete, path: "/api/v1/cart/items/missing",
		headers: map[string]string{handlers.CartSessionHeader: uuid.NewString()}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartRemoveMatchingLine(t *testing.T) {
	h := newHarness(t)
	p := h.createProduct(t)
	session := map[string]string{handlers.CartSessionHeader: uuid.NewString()}
	line := map[string]any{"product_id": p.ID, "size": "M", "color": "Noir"}

	w := h.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", headers: session,
		body: map[string]any{"product_id": p.ID, "quantity": 1, "size": "M", "color": "Noir"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, request{method: http.MethodDelete, path: "/api/v1/cart/items", headers: session, body: line})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view struct {
		Data cart.View `json:"data"`
	}
	decode(t, w, &view)
	assert.Empty(t, view.Data.Items)

	w = h.do(t, request{method: http.MethodDelete, path: "/api/v1/cart/items", headers: session, body: line})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, request{method: http.MethodDelete, path: "/api/v1/cart/items", headers: session, body: map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactForm(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, request{method: http.MethodPost, path: "/api/v1/contact", body: map[string]string{"name": "Camille"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/contact", body: map[string]string{
		"name": "Camille", "email": "camille@example.com", "message": "Bonjour",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	require.Len(t, h.mail.Sent(), 1)
	assert.Equal(t, "camille@example.com", h.mail.Sent()[0].ReplyTo)

	h.mail.Err = errors.New("relay down")
	w = h.do(t, request{method: http.MethodPost, path: "/api/v1/quote", body: map[string]any{
		"name": "Camille", "email": "camille@example.com", "quantity": 50,
	}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestProfileRequiresToken(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.directory.Accounts[userID] = &customer.Account{ID: userID, Email: "camille@example.com", FullName: "Camille Martin"}

	w := h.do(t, request{method: http.MethodGet, path: "/api/v1/me/profile"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := h.tokens.Issue(userID, "camille@example.com", time.Hour)
	require.NoError(t, err)
	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/me/profile", headers: map[string]string{"Authorization": "Bearer " + token}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Camille")

	w = h.do(t, request{method: http.MethodGet, path: "/api/v1/me/orders", headers: map[string]string{"Authorization": "Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
}
