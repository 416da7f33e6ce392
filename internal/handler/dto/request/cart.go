package request

import (
	"strings"

	"aurum-commerce/internal/usecase/commands"
)

type AddCartItemRequest struct {
	SKU           string `json:"sku" binding:"required"`
	Quantity      int32  `json:"quantity" binding:"required,min=1,max=10"`
	SelectedImage string `json:"selected_image,omitempty"`
}

func (r AddCartItemRequest) ToCommand() commands.AddItemRequest {
	return commands.AddItemRequest{
		SKU:           strings.TrimSpace(r.SKU),
		Quantity:      r.Quantity,
		SelectedImage: strings.TrimSpace(r.SelectedImage),
	}
}

type UpdateCartItemRequest struct {
	Quantity int32 `json:"quantity" binding:"required,min=1,max=10"`
}

type ApplyDiscountRequest struct {
	Kind string `json:"kind" binding:"required,oneof=coupon voucher gift_card"`
	Code string `json:"code" binding:"required"`
}

func (r ApplyDiscountRequest) TrimmedCode() string {
	return strings.TrimSpace(r.Code)
}
