package shared

import "context"

// GatewayPayment is the gateway's record of a payment attempt. Amounts are
// in minor units because that is what the gateway speaks.
type GatewayPayment struct {
	GatewayPaymentID string
	GatewayOrderID   string
	Status           string
	AmountMinorUnits int64
	Currency         string
	Method           string
}

// PaymentGateway abstracts the external payment provider. Webhook handling
// never trusts the inbound payload: implementations verify signatures and
// callers re-fetch the payment from the gateway before acting on it.
type PaymentGateway interface {
	// CreateOrder registers the intent to collect amountMinorUnits and
	// returns the gateway's order identifier.
	CreateOrder(ctx context.Context, receipt string, amountMinorUnits int64, currency string, notes map[string]string) (string, error)
	FetchPayment(ctx context.Context, gatewayPaymentID string) (*GatewayPayment, error)
	// Refund returns the gateway's refund identifier.
	Refund(ctx context.Context, gatewayPaymentID string, amountMinorUnits int64, notes map[string]string) (string, error)
	// VerifyPaymentSignature checks the checkout-callback signature over
	// "<gatewayOrderID>|<gatewayPaymentID>".
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	// VerifyWebhookSignature checks the webhook signature over the raw body.
	VerifyWebhookSignature(body []byte, signature string) bool
}
