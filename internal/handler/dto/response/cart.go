package response

import (
	"time"

	"aurum-commerce/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CartResponse struct {
	ID             uuid.UUID              `json:"id"`
	Items          []CartItemResponse     `json:"items"`
	Discounts      []CartDiscountResponse `json:"discounts"`
	Subtotal       int64                  `json:"subtotal"`
	CouponAmount   int64                  `json:"coupon_amount"`
	VoucherAmount  int64                  `json:"voucher_amount"`
	GiftCardAmount int64                  `json:"gift_card_amount"`
	ShippingCharge int64                  `json:"shipping_charge"`
	Total          int64                  `json:"total"`
	ExpiresAt      time.Time              `json:"expires_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type CartItemResponse struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Karat         string    `json:"karat"`
	StoneType     string    `json:"stone_type"`
	UnitPrice     int64     `json:"unit_price"`
	Quantity      int32     `json:"quantity"`
	LineTotal     int64     `json:"line_total"`
	SelectedImage string    `json:"selected_image,omitempty"`
}

type CartDiscountResponse struct {
	Kind   string `json:"kind"`
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
}

func FromCartView(v *queries.CartView) (*CartResponse, error) {
	var resp CartResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		resp.Items = []CartItemResponse{}
	}
	if resp.Discounts == nil {
		resp.Discounts = []CartDiscountResponse{}
	}
	return &resp, nil
}
