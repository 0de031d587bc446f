// internal/testutil/stripe.go
package testutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// SignStripePayload builds a Stripe-Signature header for payload
func SignStripePayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// StripeEvent encodes a webhook event envelope around object
func StripeEvent(t testing.TB, id, eventType string, object map[string]any) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"api_version": "2024-04-10",
		"type":        eventType,
		"data":        map[string]any{"object": object},
	})
	if err != nil {
		t.Fatalf("encode stripe event: %v", err)
	}
	return payload
}

// CompletedSession returns a checkout.session.completed object
func CompletedSession(sessionID, orderID, userID string) map[string]any {
	meta := map[string]any{}
	if orderID != "" {
		meta["orderId"] = orderID
	}
	if userID != "" {
		meta["userId"] = userID
	}
	return map[string]any{
		"id":             sessionID,
		"object":         "checkout.session",
		"payment_status": "paid",
		"payment_intent": "pi_" + sessionID,
		"metadata":       meta,
		"customer_details": map[string]any{
			"email": "client@example.com",
			"name":  "Camille Martin",
		},
		"shipping_details": map[string]any{
			"name": "Camille Martin",
			"address": map[string]any{
				"line1":       "12 rue des Tisserands",
				"city":        "Lyon",
				"postal_code": "69001",
				"country":     "FR",
			},
		},
	}
}

// WithCartSession adds the cart session metadata to a session object
func WithCartSession(object map[string]any, cartSessionID string) map[string]any {
	object["metadata"].(map[string]any)["cartSession"] = cartSessionID
	return object
}

// FailedIntent returns a payment_intent.payment_failed object
func FailedIntent(intentID, orderID string) map[string]any {
	meta := map[string]any{}
	if orderID != "" {
		meta["orderId"] = orderID
	}
	return map[string]any{
		"id":       intentID,
		"object":   "payment_intent",
		"status":   "requires_payment_method",
		"metadata": meta,
		"last_payment_error": map[string]any{
			"message": "Your card was declined.",
		},
	}
}
