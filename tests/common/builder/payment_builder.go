//go:build unit || e2e

package builder

import (
	"time"

	"aurum-commerce/internal/domain/order"
	"aurum-commerce/internal/domain/payment"

	"github.com/google/uuid"
)

type PaymentBuilder struct {
	OrderID  uuid.UUID
	UserID   uuid.UUID
	Amount   int64
	Currency string
	Method   order.PaymentMethod
	Now      time.Time
}

func NewPaymentBuilder() *PaymentBuilder {
	return &PaymentBuilder{
		OrderID:  uuid.New(),
		UserID:   uuid.New(),
		Amount:   52000,
		Currency: "INR",
		Method:   order.MethodGateway,
		Now:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *PaymentBuilder) With(mutate func(*PaymentBuilder)) *PaymentBuilder {
	mutate(b)
	return b
}

func (b *PaymentBuilder) BuildDomain() (*payment.Payment, error) {
	return payment.NewPayment(b.OrderID, b.UserID, b.Amount, b.Currency, b.Method, b.Now)
}

// BuildCaptured returns a payment already captured with the given gateway
// payment id attached.
func (b *PaymentBuilder) BuildCaptured(gatewayPaymentID string) (*payment.Payment, error) {
	p, err := b.BuildDomain()
	if err != nil {
		return nil, err
	}
	if err := p.Capture(&gatewayPaymentID, b.Now); err != nil {
		return nil, err
	}
	return p, nil
}
