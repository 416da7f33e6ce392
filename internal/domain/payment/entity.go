package payment

import (
	"time"

	"aurum-commerce/internal/domain/order"

	"github.com/google/uuid"
)

// Refund is one entry in a payment's refund ledger: pending until the
// gateway (or an operator) settles it as processed or failed.
type Refund struct {
	ID              uuid.UUID
	Amount          int64
	Reason          string
	Status          RefundStatus
	GatewayRefundID *string
	ProcessedAt     *time.Time
	CreatedAt       time.Time
}

// Payment tracks the money side of one order. Created at initiation, never
// deleted, only transitioned: created -> captured | failed. Capture happens
// at most once regardless of how many times the gateway confirmation is
// delivered.
type Payment struct {
	id               uuid.UUID
	orderID          uuid.UUID
	userID           uuid.UUID
	amount           int64
	currency         string
	method           order.PaymentMethod
	status           Status
	gatewayOrderID   *string
	gatewayPaymentID *string
	refunds          []Refund
	capturedAt       *time.Time
	failureReason    *string
	createdAt        time.Time
	updatedAt        time.Time
}

func NewPayment(
	orderID, userID uuid.UUID,
	amount int64,
	currency string,
	method order.PaymentMethod,
	now time.Time,
) (*Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Payment{
		id:        uuid.New(),
		orderID:   orderID,
		userID:    userID,
		amount:    amount,
		currency:  currency,
		method:    method,
		status:    StatusCreated,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructPayment(
	id, orderID, userID uuid.UUID,
	amount int64,
	currency string,
	method order.PaymentMethod,
	status Status,
	gatewayOrderID, gatewayPaymentID *string,
	refunds []Refund,
	capturedAt *time.Time,
	failureReason *string,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:               id,
		orderID:          orderID,
		userID:           userID,
		amount:           amount,
		currency:         currency,
		method:           method,
		status:           status,
		gatewayOrderID:   gatewayOrderID,
		gatewayPaymentID: gatewayPaymentID,
		refunds:          refunds,
		capturedAt:       capturedAt,
		failureReason:    failureReason,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (p *Payment) ID() uuid.UUID                     { return p.id }
func (p *Payment) OrderID() uuid.UUID                { return p.orderID }
func (p *Payment) UserID() uuid.UUID                 { return p.userID }
func (p *Payment) Amount() int64                     { return p.amount }
func (p *Payment) Currency() string                  { return p.currency }
func (p *Payment) Method() order.PaymentMethod       { return p.method }
func (p *Payment) Status() Status                    { return p.status }
func (p *Payment) GatewayOrderID() *string           { return p.gatewayOrderID }
func (p *Payment) GatewayPaymentID() *string         { return p.gatewayPaymentID }
func (p *Payment) Refunds() []Refund                 { return p.refunds }
func (p *Payment) CapturedAt() *time.Time            { return p.capturedAt }
func (p *Payment) FailureReason() *string            { return p.failureReason }
func (p *Payment) CreatedAt() time.Time              { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time              { return p.updatedAt }
func (p *Payment) IsCaptured() bool                  { return p.status == StatusCaptured }

// AmountMinorUnits is what the gateway expects; the catalog prices in whole
// currency units.
func (p *Payment) AmountMinorUnits() int64 {
	return p.amount * 100
}

// AttachGatewayOrder records the gateway order token. Re-initiating payment
// for an order with an existing non-captured record reuses the record and
// overwrites the token.
func (p *Payment) AttachGatewayOrder(gatewayOrderID string, now time.Time) error {
	if p.status == StatusCaptured {
		return ErrAlreadyCaptured
	}
	p.gatewayOrderID = &gatewayOrderID
	p.status = StatusCreated
	p.failureReason = nil
	p.updatedAt = now
	return nil
}

// Capture transitions to captured exactly once. A second call reports
// ErrAlreadyCaptured so webhook redelivery can short-circuit.
func (p *Payment) Capture(gatewayPaymentID *string, now time.Time) error {
	if p.status == StatusCaptured {
		return ErrAlreadyCaptured
	}
	p.status = StatusCaptured
	p.gatewayPaymentID = gatewayPaymentID
	p.capturedAt = &now
	p.updatedAt = now
	return nil
}

func (p *Payment) Fail(reason string, now time.Time) error {
	if p.status == StatusCaptured {
		return ErrAlreadyCaptured
	}
	p.status = StatusFailed
	p.failureReason = &reason
	p.updatedAt = now
	return nil
}

// RefundedAmount sums refunds that are pending or processed; failed refunds
// free their amount again.
func (p *Payment) RefundedAmount() int64 {
	var total int64
	for _, r := range p.refunds {
		if r.Status != RefundFailed {
			total += r.Amount
		}
	}
	return total
}

// InitiateRefund appends a pending refund record. Only captured payments
// can be refunded, bounded by the captured amount minus prior refunds.
func (p *Payment) InitiateRefund(amount int64, reason string, now time.Time) (Refund, error) {
	if p.status != StatusCaptured {
		return Refund{}, ErrNotCaptured
	}
	if amount <= 0 {
		return Refund{}, ErrInvalidAmount
	}
	if amount > p.amount-p.RefundedAmount() {
		return Refund{}, ErrRefundExceedsAmount
	}

	refund := Refund{
		ID:        uuid.New(),
		Amount:    amount,
		Reason:    reason,
		Status:    RefundPending,
		CreatedAt: now,
	}
	p.refunds = append(p.refunds, refund)
	p.updatedAt = now
	return refund, nil
}

// SettleRefund moves a pending refund to its terminal status. Stock is
// deliberately untouched here; only a full order return releases stock.
func (p *Payment) SettleRefund(refundID uuid.UUID, status RefundStatus, gatewayRefundID *string, now time.Time) error {
	if !status.IsTerminal() {
		return ErrRefundNotPending
	}
	for i := range p.refunds {
		if p.refunds[i].ID == refundID {
			if p.refunds[i].Status != RefundPending {
				return ErrRefundNotPending
			}
			p.refunds[i].Status = status
			p.refunds[i].GatewayRefundID = gatewayRefundID
			p.refunds[i].ProcessedAt = &now
			p.updatedAt = now
			return nil
		}
	}
	return ErrRefundNotFound
}
