//go:build unit || e2e

package builder

import (
	"time"

	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/domain/order"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	UserID         uuid.UUID
	Items          []order.ItemSnapshot
	Shipping       order.Address
	Billing        order.Address
	Subtotal       int64
	Discounts      order.DiscountSnapshot
	ShippingCharge int64
	TaxAmount      int64
	Total          int64
	Method         order.PaymentMethod
	Notes          string
	Now            time.Time
}

func NewOrderBuilder() *OrderBuilder {
	addr := order.Address{
		Name:       "Asha Verma",
		Line1:      "12 Marine Drive",
		City:       "Mumbai",
		State:      "MH",
		PostalCode: "400001",
		Country:    "IN",
		Phone:      "+91-9800000000",
	}
	item, _ := order.NewItemSnapshot(
		uuid.New(), "Classic Diamond Ring", "RING-18K-DIA-001",
		catalog.Karat18, catalog.StoneDiamond, 52000, 1, "", 4.2,
	)
	return &OrderBuilder{
		UserID:         uuid.New(),
		Items:          []order.ItemSnapshot{item},
		Shipping:       addr,
		Billing:        addr,
		Subtotal:       52000,
		Discounts:      order.DiscountSnapshot{},
		ShippingCharge: 0,
		TaxAmount:      0,
		Total:          52000,
		Method:         order.MethodGateway,
		Now:            time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) BuildDomain() (*order.Order, error) {
	return order.NewOrder(
		b.UserID, b.Items, b.Shipping, b.Billing,
		b.Subtotal, b.Discounts, b.ShippingCharge, b.TaxAmount, b.Total,
		b.Method, b.Notes, b.Now,
	)
}

// BuildInStatus walks the order along the shortest path to the target
// status so transition tests can start anywhere in the graph.
func (b *OrderBuilder) BuildInStatus(target order.Status) (*order.Order, error) {
	o, err := b.BuildDomain()
	if err != nil {
		return nil, err
	}
	paths := map[order.Status][]order.Status{
		order.StatusPending:    {},
		order.StatusProcessing: {order.StatusProcessing},
		order.StatusShipped:    {order.StatusProcessing, order.StatusShipped},
		order.StatusDelivered:  {order.StatusProcessing, order.StatusShipped, order.StatusDelivered},
		order.StatusCancelled:  {order.StatusCancelled},
		order.StatusFailed:     {order.StatusFailed},
		order.StatusReturned:   {order.StatusProcessing, order.StatusShipped, order.StatusDelivered, order.StatusReturned},
	}
	for _, step := range paths[target] {
		if err := o.TransitionTo(step, b.Now, 168*time.Hour); err != nil {
			return nil, err
		}
	}
	return o, nil
}
