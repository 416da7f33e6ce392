package response

import (
	"aurum-commerce/internal/usecase/commands"
	"aurum-commerce/internal/usecase/queries"

	"github.com/google/uuid"
)

type CheckoutResponse struct {
	OrderID         uuid.UUID `json:"order_id"`
	OrderNumber     string    `json:"order_number"`
	Total           int64     `json:"total"`
	PaymentRequired bool      `json:"payment_required"`
}

func FromCheckoutResult(r *commands.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		OrderID:         r.OrderID,
		OrderNumber:     r.OrderNumber,
		Total:           r.Total,
		PaymentRequired: r.PaymentRequired,
	}
}

type QuoteResponse struct {
	Price       int64   `json:"price"`
	GrossWeight float64 `json:"gross_weight"`
}

func FromQuoteView(v *queries.QuoteView) QuoteResponse {
	return QuoteResponse{
		Price:       v.Price,
		GrossWeight: v.GrossWeight,
	}
}

type SweepResponse struct {
	ExpiredVouchers  int64 `json:"expired_vouchers"`
	ExpiredGiftCards int64 `json:"expired_gift_cards"`
	ExpiredCarts     int64 `json:"expired_carts"`
}

func FromSweepResult(r *commands.SweepResult) SweepResponse {
	return SweepResponse{
		ExpiredVouchers:  r.ExpiredVouchers,
		ExpiredGiftCards: r.ExpiredGiftCards,
		ExpiredCarts:     r.ExpiredCarts,
	}
}
