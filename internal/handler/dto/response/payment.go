package response

import (
	"time"

	"aurum-commerce/internal/usecase/commands"
	"aurum-commerce/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// InitiatePaymentResponse hands the browser SDK everything it needs to
// open the gateway checkout. GatewayOrderID is empty for cash on delivery.
type InitiatePaymentResponse struct {
	PaymentID        uuid.UUID `json:"payment_id"`
	GatewayOrderID   string    `json:"gateway_order_id,omitempty"`
	AmountMinorUnits int64     `json:"amount_minor_units"`
	Currency         string    `json:"currency"`
	Method           string    `json:"method"`
}

func FromInitiatePaymentResult(r *commands.InitiatePaymentResult) InitiatePaymentResponse {
	return InitiatePaymentResponse{
		PaymentID:        r.PaymentID,
		GatewayOrderID:   r.GatewayOrderID,
		AmountMinorUnits: r.AmountMinorUnits,
		Currency:         r.Currency,
		Method:           r.Method,
	}
}

type PaymentResponse struct {
	ID               uuid.UUID        `json:"id"`
	OrderID          uuid.UUID        `json:"order_id"`
	Amount           int64            `json:"amount"`
	Currency         string           `json:"currency"`
	Method           string           `json:"method"`
	Status           string           `json:"status"`
	GatewayOrderID   *string          `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string          `json:"gateway_payment_id,omitempty"`
	FailureReason    *string          `json:"failure_reason,omitempty"`
	CapturedAt       *time.Time       `json:"captured_at,omitempty"`
	Refunds          []RefundResponse `json:"refunds"`
	CreatedAt        time.Time        `json:"created_at"`
}

type RefundResponse struct {
	ID              uuid.UUID  `json:"id"`
	Amount          int64      `json:"amount"`
	Reason          string     `json:"reason,omitempty"`
	Status          string     `json:"status"`
	GatewayRefundID *string    `json:"gateway_refund_id,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func FromPaymentView(v *queries.PaymentView) (*PaymentResponse, error) {
	var resp PaymentResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	if resp.Refunds == nil {
		resp.Refunds = []RefundResponse{}
	}
	return &resp, nil
}

type RefundResultResponse struct {
	RefundID uuid.UUID `json:"refund_id"`
	Amount   int64     `json:"amount"`
	Status   string    `json:"status"`
}

func FromRefundResult(r *commands.RefundResult) RefundResultResponse {
	return RefundResultResponse{
		RefundID: r.RefundID,
		Amount:   r.Amount,
		Status:   r.Status,
	}
}
