package order

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"aurum-commerce/internal/domain/catalog"

	"github.com/google/uuid"
)

var (
	ErrInvalidAddress  = errors.New("address is incomplete")
	ErrInvalidSnapshot = errors.New("order item snapshot is invalid")
)

// PaymentMethod is how the buyer chose to pay at checkout.
type PaymentMethod string

const (
	MethodGateway        PaymentMethod = "gateway"
	MethodCashOnDelivery PaymentMethod = "cod"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodGateway, MethodCashOnDelivery:
		return true
	default:
		return false
	}
}

func NewPaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", errors.New("invalid payment method")
	}
	return m, nil
}

type Address struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

func (a Address) Validate() error {
	if strings.TrimSpace(a.Name) == "" ||
		strings.TrimSpace(a.Line1) == "" ||
		strings.TrimSpace(a.City) == "" ||
		strings.TrimSpace(a.PostalCode) == "" ||
		strings.TrimSpace(a.Country) == "" {
		return ErrInvalidAddress
	}
	return nil
}

// ItemSnapshot is an immutable copy of everything the order needs from the
// catalog at purchase time. Future catalog edits never reach it.
type ItemSnapshot struct {
	ProductID       uuid.UUID
	ProductName     string
	SKU             catalog.SKU
	Karat           catalog.Karat
	StoneType       catalog.StoneType
	PriceAtPurchase int64
	Quantity        int32
	Image           string
	GrossWeight     float64
}

func NewItemSnapshot(
	productID uuid.UUID,
	productName string,
	sku catalog.SKU,
	karat catalog.Karat,
	stoneType catalog.StoneType,
	priceAtPurchase int64,
	quantity int32,
	image string,
	grossWeight float64,
) (ItemSnapshot, error) {
	if quantity <= 0 || priceAtPurchase < 0 || sku.IsZero() {
		return ItemSnapshot{}, ErrInvalidSnapshot
	}
	return ItemSnapshot{
		ProductID:       productID,
		ProductName:     productName,
		SKU:             sku,
		Karat:           karat,
		StoneType:       stoneType,
		PriceAtPurchase: priceAtPurchase,
		Quantity:        quantity,
		Image:           image,
		GrossWeight:     grossWeight,
	}, nil
}

// DiscountSnapshot freezes the amounts taken off at checkout. Amounts only;
// no live references back to the coupon/voucher/gift-card rows.
type DiscountSnapshot struct {
	CouponAmount   int64
	VoucherAmount  int64
	GiftCardAmount int64
}

func (d DiscountSnapshot) Total() int64 {
	return d.CouponAmount + d.VoucherAmount + d.GiftCardAmount
}

// NewOrderNumber builds a unique human-readable order number, e.g.
// ORD-20260829-4F2A1C.
func NewOrderNumber(now time.Time) string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(b[:])))
}

// NewTrackingNumber is generated when an order first enters shipped.
func NewTrackingNumber() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return "TRK-" + strings.ToUpper(hex.EncodeToString(b[:]))
}
