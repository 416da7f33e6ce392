package response

import (
	"time"

	"aurum-commerce/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type AddressResponse struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	ShippingAddress AddressResponse     `json:"shipping_address"`
	BillingAddress  AddressResponse     `json:"billing_address"`
	Items           []OrderItemResponse `json:"items"`
	Subtotal        int64               `json:"subtotal"`
	CouponAmount    int64               `json:"coupon_amount"`
	VoucherAmount   int64               `json:"voucher_amount"`
	GiftCardAmount  int64               `json:"gift_card_amount"`
	ShippingCharge  int64               `json:"shipping_charge"`
	TaxAmount       int64               `json:"tax_amount"`
	Total           int64               `json:"total"`
	Notes           string              `json:"notes,omitempty"`
	TrackingNumber  *string             `json:"tracking_number,omitempty"`
	EstimatedETA    *time.Time          `json:"estimated_eta,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	ReturnedAt      *time.Time          `json:"returned_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	SKU             string    `json:"sku"`
	Karat           string    `json:"karat"`
	StoneType       string    `json:"stone_type"`
	PriceAtPurchase int64     `json:"price_at_purchase"`
	Quantity        int32     `json:"quantity"`
	Image           string    `json:"image,omitempty"`
	GrossWeight     float64   `json:"gross_weight"`
}

type OrderListItemResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	Total         int64     `json:"total"`
	ItemCount     int32     `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type OrderListResponse struct {
	Orders     []OrderListItemResponse `json:"orders"`
	NextCursor *string                 `json:"next_cursor,omitempty"`
}

func FromOrderView(v *queries.OrderView) (*OrderResponse, error) {
	var resp OrderResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		resp.Items = []OrderItemResponse{}
	}
	return &resp, nil
}

func FromOrderList(items []*queries.OrderListItem, nextCursor *string) (*OrderListResponse, error) {
	resp := OrderListResponse{
		Orders:     make([]OrderListItemResponse, 0, len(items)),
		NextCursor: nextCursor,
	}
	for _, item := range items {
		var row OrderListItemResponse
		if err := copier.Copy(&row, item); err != nil {
			return nil, err
		}
		resp.Orders = append(resp.Orders, row)
	}
	return &resp, nil
}
