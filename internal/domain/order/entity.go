package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoItems         = errors.New("order must contain at least one item")
	ErrNotCancellable  = errors.New("order cannot be cancelled in its current status")
	ErrNotReturnable   = errors.New("order cannot be returned in its current status")
	ErrNotOwner        = errors.New("order does not belong to the requester")
	ErrNegativeAmounts = errors.New("order monetary fields cannot be negative")
)

// Order is an immutable snapshot of a cart at checkout. Monetary fields are
// derived once at creation and never recomputed from live prices; only the
// status and its bookkeeping timestamps move afterwards.
type Order struct {
	id             uuid.UUID
	orderNumber    string
	userID         uuid.UUID
	items          []ItemSnapshot
	shipping       Address
	billing        Address
	subtotal       int64
	discounts      DiscountSnapshot
	shippingCharge int64
	taxAmount      int64
	total          int64
	status         Status
	paymentMethod  PaymentMethod
	notes          string
	trackingNumber *string
	estimatedETA   *time.Time
	cancelledAt    *time.Time
	returnedAt     *time.Time
	deliveredAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func NewOrder(
	userID uuid.UUID,
	items []ItemSnapshot,
	shipping, billing Address,
	subtotal int64,
	discounts DiscountSnapshot,
	shippingCharge, taxAmount, total int64,
	method PaymentMethod,
	notes string,
	now time.Time,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	if err := billing.Validate(); err != nil {
		return nil, err
	}
	if subtotal < 0 || shippingCharge < 0 || taxAmount < 0 || total < 0 {
		return nil, ErrNegativeAmounts
	}

	return &Order{
		id:             uuid.New(),
		orderNumber:    NewOrderNumber(now),
		userID:         userID,
		items:          items,
		shipping:       shipping,
		billing:        billing,
		subtotal:       subtotal,
		discounts:      discounts,
		shippingCharge: shippingCharge,
		taxAmount:      taxAmount,
		total:          total,
		status:         StatusPending,
		paymentMethod:  method,
		notes:          notes,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructOrder(
	id uuid.UUID,
	orderNumber string,
	userID uuid.UUID,
	items []ItemSnapshot,
	shipping, billing Address,
	subtotal int64,
	discounts DiscountSnapshot,
	shippingCharge, taxAmount, total int64,
	status Status,
	method PaymentMethod,
	notes string,
	trackingNumber *string,
	estimatedETA, cancelledAt, returnedAt, deliveredAt *time.Time,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:             id,
		orderNumber:    orderNumber,
		userID:         userID,
		items:          items,
		shipping:       shipping,
		billing:        billing,
		subtotal:       subtotal,
		discounts:      discounts,
		shippingCharge: shippingCharge,
		taxAmount:      taxAmount,
		total:          total,
		status:         status,
		paymentMethod:  method,
		notes:          notes,
		trackingNumber: trackingNumber,
		estimatedETA:   estimatedETA,
		cancelledAt:    cancelledAt,
		returnedAt:     returnedAt,
		deliveredAt:    deliveredAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (o *Order) ID() uuid.UUID                { return o.id }
func (o *Order) OrderNumber() string          { return o.orderNumber }
func (o *Order) UserID() uuid.UUID            { return o.userID }
func (o *Order) Items() []ItemSnapshot        { return o.items }
func (o *Order) Shipping() Address            { return o.shipping }
func (o *Order) Billing() Address             { return o.billing }
func (o *Order) Subtotal() int64              { return o.subtotal }
func (o *Order) Discounts() DiscountSnapshot  { return o.discounts }
func (o *Order) ShippingCharge() int64        { return o.shippingCharge }
func (o *Order) TaxAmount() int64             { return o.taxAmount }
func (o *Order) Total() int64                 { return o.total }
func (o *Order) Status() Status               { return o.status }
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }
func (o *Order) Notes() string                { return o.notes }
func (o *Order) TrackingNumber() *string      { return o.trackingNumber }
func (o *Order) EstimatedETA() *time.Time     { return o.estimatedETA }
func (o *Order) CancelledAt() *time.Time      { return o.cancelledAt }
func (o *Order) ReturnedAt() *time.Time       { return o.returnedAt }
func (o *Order) DeliveredAt() *time.Time      { return o.deliveredAt }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }

func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.userID == userID
}

// TransitionTo moves the order along the fixed status graph and applies the
// per-status side effects: processing gets an ETA, shipped gets a tracking
// number if absent, cancelled/returned/delivered stamp their timestamps.
// Stock release for cancelled/returned is the caller's job; the entity has
// no reach into the catalog.
func (o *Order) TransitionTo(next Status, now time.Time, deliveryETA time.Duration) error {
	if !o.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	switch next {
	case StatusProcessing:
		eta := now.Add(deliveryETA)
		o.estimatedETA = &eta
	case StatusShipped:
		if o.trackingNumber == nil {
			tn := NewTrackingNumber()
			o.trackingNumber = &tn
		}
	case StatusDelivered:
		o.deliveredAt = &now
	case StatusCancelled:
		o.cancelledAt = &now
	case StatusReturned:
		o.returnedAt = &now
	}

	o.status = next
	o.updatedAt = now
	return nil
}

// Cancel is permitted only from pending or processing, and only by the
// owner or an administrative actor.
func (o *Order) Cancel(now time.Time) error {
	if !o.status.IsCancellable() {
		return ErrNotCancellable
	}
	return o.TransitionTo(StatusCancelled, now, 0)
}

// Return is permitted only from delivered.
func (o *Order) Return(now time.Time) error {
	if !o.status.IsReturnable() {
		return ErrNotReturnable
	}
	return o.TransitionTo(StatusReturned, now, 0)
}
