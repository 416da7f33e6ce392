package readstore

import (
	"context"
	"encoding/json"
	"time"

	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

var _ queries.OrderReadStore = (*OrderReadStore)(nil)

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	const query = `
		SELECT id, order_number, user_id, status, payment_method,
		       shipping_address, billing_address,
		       subtotal, coupon_amount, voucher_amount, gift_card_amount,
		       shipping_charge, tax_amount, total, notes,
		       tracking_number, estimated_eta, cancelled_at, returned_at, delivered_at,
		       created_at, updated_at
		FROM orders
		WHERE id = $1`

	var (
		view                     queries.OrderView
		shippingJSON, billingJSON []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&view.ID,
		&view.OrderNumber,
		&view.UserID,
		&view.Status,
		&view.PaymentMethod,
		&shippingJSON,
		&billingJSON,
		&view.Subtotal,
		&view.CouponAmount,
		&view.VoucherAmount,
		&view.GiftCardAmount,
		&view.ShippingCharge,
		&view.TaxAmount,
		&view.Total,
		&view.Notes,
		&view.TrackingNumber,
		&view.EstimatedETA,
		&view.CancelledAt,
		&view.ReturnedAt,
		&view.DeliveredAt,
		&view.CreatedAt,
		&view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by ID", err)
	}

	if err := json.Unmarshal(shippingJSON, &view.ShippingAddress); err != nil {
		return nil, infra.WrapRepoErr("failed to decode shipping address", err)
	}
	if err := json.Unmarshal(billingJSON, &view.BillingAddress); err != nil {
		return nil, infra.WrapRepoErr("failed to decode billing address", err)
	}

	if err := r.loadItems(ctx, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *OrderReadStore) loadItems(ctx context.Context, view *queries.OrderView) error {
	const query = `
		SELECT product_id, product_name, sku, karat, stone_type,
		       price_at_purchase, quantity, image, gross_weight
		FROM order_items
		WHERE order_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, query, view.ID)
	if err != nil {
		return infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	view.Items = []queries.OrderItemView{}
	for rows.Next() {
		var item queries.OrderItemView
		if err := rows.Scan(
			&item.ProductID,
			&item.ProductName,
			&item.SKU,
			&item.Karat,
			&item.StoneType,
			&item.PriceAtPurchase,
			&item.Quantity,
			&item.Image,
			&item.GrossWeight,
		); err != nil {
			return infra.WrapRepoErr("failed to scan order item", err)
		}
		view.Items = append(view.Items, item)
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr("failed to iterate order items", err)
	}
	return nil
}

const orderListColumns = `
	SELECT o.id, o.order_number, o.status, o.payment_method, o.total,
	       (SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id)::int AS item_count,
	       o.created_at
	FROM orders o`

func (r *OrderReadStore) FindByUserFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	query := orderListColumns + `
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find orders first page", err)
	}
	defer rows.Close()

	return scanOrderList(rows)
}

func (r *OrderReadStore) FindByUserKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	query := orderListColumns + `
		WHERE o.user_id = $1 AND (o.created_at, o.id) < ($2, $3)
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $4`

	rows, err := r.db.Query(ctx, query, userID, lastCreatedAt, lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find orders keyset", err)
	}
	defer rows.Close()

	return scanOrderList(rows)
}

func scanOrderList(rows pgx.Rows) ([]*queries.OrderListItem, error) {
	result := []*queries.OrderListItem{}
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderNumber,
			&item.Status,
			&item.PaymentMethod,
			&item.Total,
			&item.ItemCount,
			&item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order list", err)
	}
	return result, nil
}
