package request

import (
	"aurum-commerce/internal/usecase/commands"
)

// ConfirmPaymentRequest carries the buyer-side checkout callback fields as
// the gateway's browser SDK names them.
type ConfirmPaymentRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature        string `json:"razorpay_signature" binding:"required"`
}

func (r ConfirmPaymentRequest) ToCommand() commands.ConfirmGatewayPaymentRequest {
	return commands.ConfirmGatewayPaymentRequest{
		GatewayOrderID:   r.GatewayOrderID,
		GatewayPaymentID: r.GatewayPaymentID,
		Signature:        r.Signature,
	}
}

type ConfirmCODRequest struct {
	CollectedAmount int64 `json:"collected_amount" binding:"required,min=0"`
}

type InitiateRefundRequest struct {
	Amount int64  `json:"amount" binding:"required,min=1"`
	Reason string `json:"reason,omitempty" binding:"max=500"`
}
