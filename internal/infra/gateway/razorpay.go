package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"aurum-commerce/internal/pkg/config"
	"aurum-commerce/internal/pkg/errs"
	"aurum-commerce/internal/usecase/shared"
)

var (
	ErrGatewayUnavailable = errs.New("payment gateway unavailable")
	ErrGatewayRejected    = errs.New("payment gateway rejected request")
)

// RazorpayGateway talks to a Razorpay-compatible REST API with basic-auth
// key credentials.
type RazorpayGateway struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	client        *http.Client
}

func NewRazorpayGateway(cfg config.GatewayConfig) *RazorpayGateway {
	return &RazorpayGateway{
		baseURL:       cfg.BaseURL,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		client:        &http.Client{Timeout: cfg.Timeout},
	}
}

var _ shared.PaymentGateway = (*RazorpayGateway)(nil)

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type paymentResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method"`
}

type refundRequest struct {
	Amount int64             `json:"amount"`
	Notes  map[string]string `json:"notes,omitempty"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, receipt string, amountMinorUnits int64, currency string, notes map[string]string) (string, error) {
	body := createOrderRequest{
		Amount:   amountMinorUnits,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	}

	var resp orderResponse
	if err := g.do(ctx, http.MethodPost, "/orders", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (g *RazorpayGateway) FetchPayment(ctx context.Context, gatewayPaymentID string) (*shared.GatewayPayment, error) {
	var resp paymentResponse
	if err := g.do(ctx, http.MethodGet, "/payments/"+gatewayPaymentID, nil, &resp); err != nil {
		return nil, err
	}

	return &shared.GatewayPayment{
		GatewayPaymentID: resp.ID,
		GatewayOrderID:   resp.OrderID,
		Status:           resp.Status,
		AmountMinorUnits: resp.Amount,
		Currency:         resp.Currency,
		Method:           resp.Method,
	}, nil
}

func (g *RazorpayGateway) Refund(ctx context.Context, gatewayPaymentID string, amountMinorUnits int64, notes map[string]string) (string, error) {
	body := refundRequest{
		Amount: amountMinorUnits,
		Notes:  notes,
	}

	var resp refundResponse
	if err := g.do(ctx, http.MethodPost, "/payments/"+gatewayPaymentID+"/refund", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (g *RazorpayGateway) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return verifyHMAC([]byte(gatewayOrderID+"|"+gatewayPaymentID), signature, g.keySecret)
}

func (g *RazorpayGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(body, signature, g.webhookSecret)
}

func verifyHMAC(message []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *RazorpayGateway) do(ctx context.Context, method, path string, reqBody any, out any) error {
	var reader io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return errs.Wrap(err, "failed to encode gateway request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return errs.Wrap(err, "failed to build gateway request")
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "gateway request failed"), ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errs.Mark(errs.Wrap(err, "failed to read gateway response"), ErrGatewayUnavailable)
	}

	if resp.StatusCode >= 500 {
		return errs.Mark(errs.Newf("gateway returned %d: %s", resp.StatusCode, truncate(raw, 256)), ErrGatewayUnavailable)
	}
	if resp.StatusCode >= 400 {
		return errs.Mark(errs.Newf("gateway returned %d: %s", resp.StatusCode, truncate(raw, 256)), ErrGatewayRejected)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return errs.Wrap(err, "failed to decode gateway response")
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...", b[:n])
}
