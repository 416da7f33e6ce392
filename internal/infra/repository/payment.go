package repository

import (
	"context"
	"time"

	"aurum-commerce/internal/domain/order"
	"aurum-commerce/internal/domain/payment"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

type PaymentRepository struct{}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

var _ shared.PaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) Create(ctx context.Context, dbtx db.DBTX, p *payment.Payment) error {
	const query = `
		INSERT INTO payments (
			id, order_id, user_id, amount, currency, method, status,
			gateway_order_id, gateway_payment_id, failure_reason, captured_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := dbtx.Exec(ctx, query,
		p.ID(), p.OrderID(), p.UserID(), p.Amount(), p.Currency(), p.Method().String(), p.Status().String(),
		p.GatewayOrderID(), p.GatewayPaymentID(), p.FailureReason(), p.CapturedAt(),
		p.CreatedAt(), p.UpdatedAt())
	if err != nil {
		if isDuplicateKey(err) {
			return infra.WrapRepoErr("payment already exists for order", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create payment", err)
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*payment.Payment, error) {
	return r.findOne(ctx, dbtx, `p.id = $1`, id)
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) (*payment.Payment, error) {
	return r.findOne(ctx, dbtx, `p.order_id = $1`, orderID)
}

func (r *PaymentRepository) FindByGatewayOrderID(ctx context.Context, dbtx db.DBTX, gatewayOrderID string) (*payment.Payment, error) {
	return r.findOne(ctx, dbtx, `p.gateway_order_id = $1`, gatewayOrderID)
}

func (r *PaymentRepository) Update(ctx context.Context, dbtx db.DBTX, p *payment.Payment) error {
	const query = `
		UPDATE payments
		SET status = $2, gateway_order_id = $3, gateway_payment_id = $4,
		    failure_reason = $5, captured_at = $6, updated_at = $7
		WHERE id = $1`

	tag, err := dbtx.Exec(ctx, query,
		p.ID(), p.Status().String(), p.GatewayOrderID(), p.GatewayPaymentID(),
		p.FailureReason(), p.CapturedAt(), p.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment not found for update", nil, infra.KindNotFound)
	}
	return nil
}

func (r *PaymentRepository) AddRefund(ctx context.Context, dbtx db.DBTX, paymentID uuid.UUID, ref payment.Refund) error {
	const query = `
		INSERT INTO payment_refunds (id, payment_id, amount, reason, status, gateway_refund_id, processed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := dbtx.Exec(ctx, query,
		ref.ID, paymentID, ref.Amount, ref.Reason, ref.Status.String(), ref.GatewayRefundID, ref.ProcessedAt, ref.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return infra.WrapRepoErr("refund references missing payment", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to insert refund", err)
	}
	return nil
}

func (r *PaymentRepository) UpdateRefund(ctx context.Context, dbtx db.DBTX, paymentID uuid.UUID, ref payment.Refund) error {
	const query = `
		UPDATE payment_refunds
		SET status = $3, gateway_refund_id = $4, processed_at = $5
		WHERE id = $1 AND payment_id = $2`

	tag, err := dbtx.Exec(ctx, query, ref.ID, paymentID, ref.Status.String(), ref.GatewayRefundID, ref.ProcessedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to update refund", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("refund not found for update", nil, infra.KindNotFound)
	}
	return nil
}

func (r *PaymentRepository) findOne(ctx context.Context, dbtx db.DBTX, where string, arg any) (*payment.Payment, error) {
	query := `
		SELECT p.id, p.order_id, p.user_id, p.amount, p.currency, p.method, p.status,
		       p.gateway_order_id, p.gateway_payment_id, p.failure_reason, p.captured_at,
		       p.created_at, p.updated_at
		FROM payments p
		WHERE ` + where

	var (
		id, orderID, userID                uuid.UUID
		amount                             int64
		currency, method, status           string
		gatewayOrderID, gatewayPaymentID   *string
		failureReason                      *string
		capturedAt                         *time.Time
		createdAt, updatedAt               time.Time
	)

	err := dbtx.QueryRow(ctx, query, arg).Scan(
		&id, &orderID, &userID, &amount, &currency, &method, &status,
		&gatewayOrderID, &gatewayPaymentID, &failureReason, &capturedAt,
		&createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment", err)
	}

	refunds, err := r.loadRefunds(ctx, dbtx, id)
	if err != nil {
		return nil, err
	}

	paymentMethod, err := order.NewPaymentMethod(method)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid payment method in storage", err)
	}

	return payment.ReconstructPayment(
		id, orderID, userID, amount, currency, paymentMethod,
		payment.Status(status),
		gatewayOrderID, gatewayPaymentID, refunds,
		capturedAt, failureReason, createdAt, updatedAt,
	), nil
}

func (r *PaymentRepository) loadRefunds(ctx context.Context, dbtx db.DBTX, paymentID uuid.UUID) ([]payment.Refund, error) {
	const query = `
		SELECT id, amount, reason, status, gateway_refund_id, processed_at, created_at
		FROM payment_refunds
		WHERE payment_id = $1
		ORDER BY created_at`

	rows, err := dbtx.Query(ctx, query, paymentID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load refunds", err)
	}
	defer rows.Close()

	var refunds []payment.Refund
	for rows.Next() {
		var (
			ref    payment.Refund
			status string
		)
		if err := rows.Scan(&ref.ID, &ref.Amount, &ref.Reason, &status, &ref.GatewayRefundID, &ref.ProcessedAt, &ref.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan refund", err)
		}
		if ref.Status, err = payment.NewRefundStatus(status); err != nil {
			return nil, infra.WrapRepoErr("invalid refund status in storage", err)
		}
		refunds = append(refunds, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate refunds", err)
	}
	return refunds, nil
}
