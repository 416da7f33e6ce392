package payment

import "errors"

var (
	ErrAlreadyCaptured     = errors.New("payment already captured")
	ErrNotCaptured         = errors.New("payment is not captured")
	ErrAlreadyFinal        = errors.New("payment is already in a final state")
	ErrRefundNotFound      = errors.New("refund record not found")
	ErrRefundExceedsAmount = errors.New("refund exceeds refundable amount")
	ErrRefundNotPending    = errors.New("refund is not pending")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

type Status string

const (
	StatusCreated  Status = "created"
	StatusCaptured Status = "captured"
	StatusFailed   Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusCaptured, StatusFailed:
		return true
	default:
		return false
	}
}

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundProcessed RefundStatus = "processed"
	RefundFailed    RefundStatus = "failed"
)

func (s RefundStatus) String() string {
	return string(s)
}

func (s RefundStatus) IsTerminal() bool {
	return s == RefundProcessed || s == RefundFailed
}

func NewRefundStatus(v string) (RefundStatus, error) {
	s := RefundStatus(v)
	switch s {
	case RefundPending, RefundProcessed, RefundFailed:
		return s, nil
	default:
		return "", errors.New("invalid refund status")
	}
}
