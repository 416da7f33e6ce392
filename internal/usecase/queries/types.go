package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type CartView struct {
	ID             uuid.UUID          `json:"id"`
	OwnerID        string             `json:"owner_id"`
	Items          []CartItemView     `json:"items"`
	Discounts      []CartDiscountView `json:"discounts"`
	Subtotal       int64              `json:"subtotal"`
	CouponAmount   int64              `json:"coupon_amount"`
	VoucherAmount  int64              `json:"voucher_amount"`
	GiftCardAmount int64              `json:"gift_card_amount"`
	ShippingCharge int64              `json:"shipping_charge"`
	Total          int64              `json:"total"`
	ExpiresAt      time.Time          `json:"expires_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type CartItemView struct {
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

type CartDiscountView struct {
	Kind   string `json:"kind"`
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
}

type AddressView struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type OrderView struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          uuid.UUID       `json:"user_id"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress AddressView     `json:"shipping_address"`
	BillingAddress  AddressView     `json:"billing_address"`
	Items           []OrderItemView `json:"items"`
	Subtotal        int64           `json:"subtotal"`
	CouponAmount    int64           `json:"coupon_amount"`
	VoucherAmount   int64           `json:"voucher_amount"`
	GiftCardAmount  int64           `json:"gift_card_amount"`
	ShippingCharge  int64           `json:"shipping_charge"`
	TaxAmount       int64           `json:"tax_amount"`
	Total           int64           `json:"total"`
	Notes           string          `json:"notes,omitempty"`
	TrackingNumber  *string         `json:"tracking_number,omitempty"`
	EstimatedETA    *time.Time      `json:"estimated_eta,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	ReturnedAt      *time.Time      `json:"returned_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderItemView struct {
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

type OrderListItem struct {
	ID            uuid.UUID `json:"id"`
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	Total         int64     `json:"total"`
	ItemCount     int32     `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type PaymentView struct {
	ID               uuid.UUID    `json:"id"`
	OrderID          uuid.UUID    `json:"order_id"`
	UserID           uuid.UUID    `json:"user_id"`
	Amount           int64        `json:"amount"`
	Currency         string       `json:"currency"`
	Method           string       `json:"method"`
	Status           string       `json:"status"`
	GatewayOrderID   *string      `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string      `json:"gateway_payment_id,omitempty"`
	FailureReason    *string      `json:"failure_reason,omitempty"`
	CapturedAt       *time.Time   `json:"captured_at,omitempty"`
	Refunds          []RefundView `json:"refunds"`
	CreatedAt        time.Time    `json:"created_at"`
}

type RefundView struct {
	ID              uuid.UUID  `json:"id"`
	Amount          int64      `json:"amount"`
	Reason          string     `json:"reason,omitempty"`
	Status          string     `json:"status"`
	GatewayRefundID *string    `json:"gateway_refund_id,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type AuthorizedUserView struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
