//go:build unit

package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aurum-commerce/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestGateway(baseURL string) *RazorpayGateway {
	return NewRazorpayGateway(config.GatewayConfig{
		BaseURL:       baseURL,
		KeyID:         "rzp_test_key",
		KeySecret:     "key-secret",
		WebhookSecret: "webhook-secret",
		Timeout:       5 * time.Second,
	})
}

func TestVerifyPaymentSignature(t *testing.T) {
	g := newTestGateway("http://unused")

	valid := sign("order_abc|pay_xyz", "key-secret")

	assert.True(t, g.VerifyPaymentSignature("order_abc", "pay_xyz", valid))
	assert.False(t, g.VerifyPaymentSignature("order_abc", "pay_other", valid))
	assert.False(t, g.VerifyPaymentSignature("order_abc", "pay_xyz", "forged"))
	// signed with the wrong secret
	assert.False(t, g.VerifyPaymentSignature("order_abc", "pay_xyz", sign("order_abc|pay_xyz", "webhook-secret")))
}

func TestVerifyWebhookSignature(t *testing.T) {
	g := newTestGateway("http://unused")
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	assert.True(t, g.VerifyWebhookSignature(body, sign(string(body), "webhook-secret")))
	assert.False(t, g.VerifyWebhookSignature(body, sign(string(body), "key-secret")))
	assert.False(t, g.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), sign(string(body), "webhook-secret")))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "key-secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_g1","amount":5200000,"currency":"INR","receipt":"ORD-1","status":"created"}`))
	}))
	defer srv.Close()

	g := newTestGateway(srv.URL)
	id, err := g.CreateOrder(context.Background(), "ORD-1", 5200000, "INR", nil)
	require.NoError(t, err)
	assert.Equal(t, "order_g1", id)
}

func TestFetchPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay_xyz", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"pay_xyz","order_id":"order_g1","status":"captured","amount":5200000,"currency":"INR","method":"card"}`))
	}))
	defer srv.Close()

	g := newTestGateway(srv.URL)
	p, err := g.FetchPayment(context.Background(), "pay_xyz")
	require.NoError(t, err)
	assert.Equal(t, "pay_xyz", p.GatewayPaymentID)
	assert.Equal(t, "order_g1", p.GatewayOrderID)
	assert.Equal(t, "captured", p.Status)
	assert.Equal(t, int64(5200000), p.AmountMinorUnits)
}

func TestGatewayErrors(t *testing.T) {
	t.Run("5xx is marked unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		g := newTestGateway(srv.URL)
		_, err := g.CreateOrder(context.Background(), "ORD-1", 100, "INR", nil)
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})

	t.Run("4xx is marked rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"description":"amount too small"}}`))
		}))
		defer srv.Close()

		g := newTestGateway(srv.URL)
		_, err := g.Refund(context.Background(), "pay_xyz", 1, nil)
		assert.ErrorIs(t, err, ErrGatewayRejected)
	})

	t.Run("connection failure is marked unavailable", func(t *testing.T) {
		g := newTestGateway("http://127.0.0.1:1")
		_, err := g.FetchPayment(context.Background(), "pay_xyz")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGatewayUnavailable))
	})
}
