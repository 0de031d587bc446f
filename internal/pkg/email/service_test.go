package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atelier-textile/storefront-api/internal/config"
	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/customization"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *LogTransport) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	transport := NewLogTransport(logger)
	svc := NewService(
		config.EmailConfig{FromEmail: "noreply@atelier.test", FromName: "Atelier", ContactEmail: "atelier@atelier.test"},
		config.ShopConfig{Name: "Atelier Textile", URL: "https://atelier.test", Locale: "fr"},
		transport,
		logger,
	)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return svc, transport
}

func TestSendContactStripsMarkup(t *testing.T) {
	svc, transport := newTestService(t)

	err := svc.SendContact(context.Background(), &ContactRequest{
		Name:    "Camille <b>Martin</b>",
		Email:   " camille@example.com ",
		Subject: "Broderie",
		Message: "Bonjour <script>alert(1)</script>je voudrais un devis",
	})
	require.NoError(t, err)

	sent := transport.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, []string{"atelier@atelier.test"}, msg.To)
	assert.Equal(t, "camille@example.com", msg.ReplyTo)
	assert.Equal(t, "Atelier <noreply@atelier.test>", msg.From)
	assert.Equal(t, "Contact : Broderie", msg.Subject)
	assert.Equal(t, MessageTypeContact, msg.Type)
	assert.Contains(t, msg.Text, "Camille Martin")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.NotContains(t, msg.Text, "alert(1)")
	assert.Contains(t, msg.HTML, "2026 Atelier Textile")
}

func TestSendQuote(t *testing.T) {
	svc, transport := newTestService(t)

	err := svc.SendQuote(context.Background(), &QuoteRequest{
		Name:      "Club de foot",
		Email:     "club@example.com",
		Company:   "FC Lyon Sud",
		Quantity:  40,
		Technique: "flocage",
	})
	require.NoError(t, err)

	sent := transport.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Demande de devis : 40 pièces (Club de foot)", sent[0].Subject)
	assert.Contains(t, sent[0].Text, "Quantité : 40")
	assert.Contains(t, sent[0].Text, "FC Lyon Sud")
	assert.Contains(t, sent[0].HTML, "flocage")
}

func sampleOrder() *order.Order {
	return &order.Order{
		ID:           uuid.MustParse("3f2a9c1e-0000-4000-8000-000000000001"),
		Currency:     "eur",
		ShippingCost: 590,
		TotalAmount:  2*2500 + 590,
		CreatedAt:    time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC),
		Items: []order.Item{{
			Name:         "T-shirt bio",
			Quantity:     2,
			PricePerUnit: 2500,
			Size:         "M",
			Color:        "Noir",
			CustomizationData: &customization.Customization{Customizations: []customization.Descriptor{
				{Face: "front", Technique: customization.TechniqueFlock, Content: customization.ContentText, Text: "Team"},
			}},
		}},
		ShippingAddress: &order.Address{Name: "Camille Martin", Line1: "3 rue de la Soie", City: "Lyon", PostalCode: "69001", Country: "FR"},
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	svc, transport := newTestService(t)

	ok := svc.SendOrderConfirmation(context.Background(), sampleOrder(), customer.Contact{Email: "camille@example.com", Name: "Camille"})
	require.True(t, ok)

	sent := transport.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, []string{"camille@example.com"}, msg.To)
	assert.Equal(t, "Confirmation de votre commande CMD-3f2a9c1e", msg.Subject)
	assert.Contains(t, msg.Text, "12/03/2026")
	assert.Contains(t, msg.Text, "T-shirt bio (M / Noir) x2")
	assert.Contains(t, msg.Text, "Team")
	assert.Contains(t, msg.Text, "69001 Lyon")
	assert.Contains(t, msg.Text, "€")
	assert.Contains(t, msg.Text, "55")
	assert.Contains(t, msg.HTML, "Camille")
}

func TestSendOrderConfirmationFailuresReturnFalse(t *testing.T) {
	svc, transport := newTestService(t)
	ctx := context.Background()

	assert.False(t, svc.SendOrderConfirmation(ctx, sampleOrder(), customer.Contact{}))

	transport.Err = errors.New("relay down")
	assert.False(t, svc.SendOrderConfirmation(ctx, sampleOrder(), customer.Contact{Email: "camille@example.com"}))
	assert.Empty(t, transport.Sent())
}

func TestLogTransportKeepsRecentMessages(t *testing.T) {
	transport := NewLogTransport(nil)
	ctx := context.Background()

	for i := 0; i < LogHistorySize+5; i++ {
		require.NoError(t, transport.Send(ctx, &Message{
			To:      []string{"camille@example.com"},
			Subject: fmt.Sprintf("message %d", i),
		}))
	}

	sent := transport.Sent()
	require.Len(t, sent, LogHistorySize)
	assert.Equal(t, "message 5", sent[0].Subject)
	assert.Equal(t, fmt.Sprintf("message %d", LogHistorySize+4), sent[len(sent)-1].Subject)
}

func TestNewTransport(t *testing.T) {
	logger, _ := test.NewNullLogger()

	tr, err := NewTransport(config.EmailConfig{Transport: "log"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &LogTransport{}, tr)

	_, err = NewTransport(config.EmailConfig{Transport: "smtp"}, logger)
	assert.Error(t, err)

	_, err = NewTransport(config.EmailConfig{Transport: "resend"}, logger)
	assert.Error(t, err)

	_, err = NewTransport(config.EmailConfig{Transport: "pigeon"}, logger)
	assert.Error(t, err)
}

func TestResendTransport(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/emails", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	tr, err := NewResendTransport("re_key", srv.URL+"/", srv.Client())
	require.NoError(t, err)

	err = tr.Send(context.Background(), &Message{From: "a@x.test", To: []string{"b@x.test"}, Subject: "Hi", HTML: "<p>Hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer re_key", auth)
	assert.Equal(t, []string{"b@x.test"}, got.To)
	assert.Equal(t, "<p>Hi</p>", got.HTML)

	assert.ErrorIs(t, tr.Send(context.Background(), &Message{}), ErrNoRecipient)
}

func TestResendTransportReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	tr, err := NewResendTransport("re_key", srv.URL, srv.Client())
	require.NoError(t, err)

	err = tr.Send(context.Background(), &Message{To: []string{"b@x.test"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from")
}

func TestBuildMIME(t *testing.T) {
	body, err := buildMIME(&Message{
		From:    "Atelier <noreply@atelier.test>",
		To:      []string{"camille@example.com"},
		Subject: "Commande confirmée",
		HTML:    "<p>Merci</p>",
		Text:    "Merci",
	})
	require.NoError(t, err)

	raw := string(body)
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "=?utf-8?q?")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(raw), "--"))
	assert.Equal(t, "noreply@atelier.test", envelopeAddress("Atelier <noreply@atelier.test>"))
	assert.Equal(t, "plain@atelier.test", envelopeAddress(" plain@atelier.test "))
}
