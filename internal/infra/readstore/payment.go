package readstore

import (
	"context"

	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/queries"

	"github.com/google/uuid"
)

type PaymentReadStore struct {
	db db.DBTX
}

func NewPaymentReadStore(dbtx db.DBTX) *PaymentReadStore {
	return &PaymentReadStore{db: dbtx}
}

var _ queries.PaymentReadStore = (*PaymentReadStore)(nil)

func (r *PaymentReadStore) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*queries.PaymentView, error) {
	const query = `
		SELECT id, order_id, user_id, amount, currency, method, status,
		       gateway_order_id, gateway_payment_id, failure_reason, captured_at, created_at
		FROM payments
		WHERE order_id = $1`

	var view queries.PaymentView
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&view.ID,
		&view.OrderID,
		&view.UserID,
		&view.Amount,
		&view.Currency,
		&view.Method,
		&view.Status,
		&view.GatewayOrderID,
		&view.GatewayPaymentID,
		&view.FailureReason,
		&view.CapturedAt,
		&view.CreatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment by order ID", err)
	}

	if err := r.loadRefunds(ctx, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *PaymentReadStore) loadRefunds(ctx context.Context, view *queries.PaymentView) error {
	const query = `
		SELECT id, amount, reason, status, gateway_refund_id, processed_at, created_at
		FROM payment_refunds
		WHERE payment_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, view.ID)
	if err != nil {
		return infra.WrapRepoErr("failed to load refunds", err)
	}
	defer rows.Close()

	view.Refunds = []queries.RefundView{}
	for rows.Next() {
		var refund queries.RefundView
		if err := rows.Scan(
			&refund.ID,
			&refund.Amount,
			&refund.Reason,
			&refund.Status,
			&refund.GatewayRefundID,
			&refund.ProcessedAt,
			&refund.CreatedAt,
		); err != nil {
			return infra.WrapRepoErr("failed to scan refund", err)
		}
		view.Refunds = append(view.Refunds, refund)
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr("failed to iterate refunds", err)
	}
	return nil
}
