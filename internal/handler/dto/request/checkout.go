package request

import (
	"strings"

	"aurum-commerce/internal/domain/order"
	"aurum-commerce/internal/usecase/commands"
)

type AddressRequest struct {
	Name       string `json:"name" binding:"required,max=120"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2,omitempty" binding:"max=200"`
	City       string `json:"city" binding:"required,max=80"`
	State      string `json:"state" binding:"required,max=80"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=60"`
	Phone      string `json:"phone" binding:"required,max=20"`
}

func (r AddressRequest) ToDomain() order.Address {
	return order.Address{
		Name:       strings.TrimSpace(r.Name),
		Line1:      strings.TrimSpace(r.Line1),
		Line2:      strings.TrimSpace(r.Line2),
		City:       strings.TrimSpace(r.City),
		State:      strings.TrimSpace(r.State),
		PostalCode: strings.TrimSpace(r.PostalCode),
		Country:    strings.TrimSpace(r.Country),
		Phone:      strings.TrimSpace(r.Phone),
	}
}

type CheckoutRequest struct {
	ShippingAddress AddressRequest  `json:"shipping_address" binding:"required"`
	BillingAddress  *AddressRequest `json:"billing_address,omitempty"`
	PaymentMethod   string          `json:"payment_method" binding:"required,oneof=gateway cod"`
	Notes           string          `json:"notes,omitempty" binding:"max=500"`
}

// ToCommand falls back to the shipping address when no separate billing
// address is supplied.
func (r CheckoutRequest) ToCommand() commands.CheckoutRequest {
	billing := r.ShippingAddress
	if r.BillingAddress != nil {
		billing = *r.BillingAddress
	}
	return commands.CheckoutRequest{
		ShippingAddress: r.ShippingAddress.ToDomain(),
		BillingAddress:  billing.ToDomain(),
		PaymentMethod:   r.PaymentMethod,
		Notes:           strings.TrimSpace(r.Notes),
	}
}
