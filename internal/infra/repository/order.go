package repository

import (
	"context"
	"encoding/json"
	"time"

	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/domain/order"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

var _ shared.OrderRepository = (*OrderRepository)(nil)

type addressRow struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

func addressToRow(a order.Address) addressRow {
	return addressRow{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

func rowToAddress(r addressRow) order.Address {
	return order.Address{
		Name:       r.Name,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
	}
}

func (r *OrderRepository) Create(ctx context.Context, dbtx db.DBTX, o *order.Order) error {
	shipping, err := json.Marshal(addressToRow(o.Shipping()))
	if err != nil {
		return infra.WrapRepoErr("failed to marshal shipping address", err)
	}
	billing, err := json.Marshal(addressToRow(o.Billing()))
	if err != nil {
		return infra.WrapRepoErr("failed to marshal billing address", err)
	}

	const query = `
		INSERT INTO orders (
			id, order_number, user_id, shipping_address, billing_address,
			subtotal, coupon_amount, voucher_amount, gift_card_amount,
			shipping_charge, tax_amount, total, status, payment_method, notes,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	d := o.Discounts()
	_, err = dbtx.Exec(ctx, query,
		o.ID(), o.OrderNumber(), o.UserID(), shipping, billing,
		o.Subtotal(), d.CouponAmount, d.VoucherAmount, d.GiftCardAmount,
		o.ShippingCharge(), o.TaxAmount(), o.Total(), o.Status().String(), o.PaymentMethod().String(), o.Notes(),
		o.CreatedAt(), o.UpdatedAt())
	if err != nil {
		if isDuplicateKey(err) {
			return infra.WrapRepoErr("order number already exists", err, infra.KindDuplicateKey)
		}
		if isForeignKeyViolation(err) {
			return infra.WrapRepoErr("order references missing user", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to create order", err)
	}

	const itemQuery = `
		INSERT INTO order_items (
			id, order_id, product_id, product_name, sku, karat, stone_type,
			price_at_purchase, quantity, image, gross_weight, position
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for i, item := range o.Items() {
		_, err := dbtx.Exec(ctx, itemQuery,
			uuid.New(), o.ID(), item.ProductID, item.ProductName, item.SKU.String(),
			item.Karat.String(), item.StoneType.String(),
			item.PriceAtPurchase, item.Quantity, item.Image, item.GrossWeight, i)
		if err != nil {
			return infra.WrapRepoErr("failed to insert order item", err)
		}
	}

	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*order.Order, error) {
	const query = `
		SELECT id, order_number, user_id, shipping_address, billing_address,
		       subtotal, coupon_amount, voucher_amount, gift_card_amount,
		       shipping_charge, tax_amount, total, status, payment_method, notes,
		       tracking_number, estimated_eta, cancelled_at, returned_at, delivered_at,
		       created_at, updated_at
		FROM orders
		WHERE id = $1`

	var (
		orderID                              uuid.UUID
		orderNumber, status, method, notes   string
		userID                               uuid.UUID
		shippingJSON, billingJSON            []byte
		subtotal, couponAmt, voucherAmt      int64
		giftCardAmt, shippingCharge, taxAmt  int64
		total                                int64
		trackingNumber                       *string
		eta, cancelledAt, returnedAt         *time.Time
		deliveredAt                          *time.Time
		createdAt, updatedAt                 time.Time
	)

	err := dbtx.QueryRow(ctx, query, id).Scan(
		&orderID, &orderNumber, &userID, &shippingJSON, &billingJSON,
		&subtotal, &couponAmt, &voucherAmt, &giftCardAmt,
		&shippingCharge, &taxAmt, &total, &status, &method, &notes,
		&trackingNumber, &eta, &cancelledAt, &returnedAt, &deliveredAt,
		&createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	var shippingRow, billingRow addressRow
	if err := json.Unmarshal(shippingJSON, &shippingRow); err != nil {
		return nil, infra.WrapRepoErr("failed to unmarshal shipping address", err)
	}
	if err := json.Unmarshal(billingJSON, &billingRow); err != nil {
		return nil, infra.WrapRepoErr("failed to unmarshal billing address", err)
	}

	items, err := r.loadItems(ctx, dbtx, orderID)
	if err != nil {
		return nil, err
	}

	orderStatus, err := order.NewStatus(status)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid order status in storage", err)
	}
	paymentMethod, err := order.NewPaymentMethod(method)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid payment method in storage", err)
	}

	return order.ReconstructOrder(
		orderID, orderNumber, userID, items,
		rowToAddress(shippingRow), rowToAddress(billingRow),
		subtotal,
		order.DiscountSnapshot{CouponAmount: couponAmt, VoucherAmount: voucherAmt, GiftCardAmount: giftCardAmt},
		shippingCharge, taxAmt, total,
		orderStatus, paymentMethod, notes,
		trackingNumber, eta, cancelledAt, returnedAt, deliveredAt,
		createdAt, updatedAt,
	), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, dbtx db.DBTX, o *order.Order) error {
	const query = `
		UPDATE orders
		SET status = $2, tracking_number = $3, estimated_eta = $4,
		    cancelled_at = $5, returned_at = $6, delivered_at = $7, updated_at = $8
		WHERE id = $1`

	tag, err := dbtx.Exec(ctx, query,
		o.ID(), o.Status().String(), o.TrackingNumber(), o.EstimatedETA(),
		o.CancelledAt(), o.ReturnedAt(), o.DeliveredAt(), o.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found for status update", nil, infra.KindNotFound)
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) ([]order.ItemSnapshot, error) {
	const query = `
		SELECT product_id, product_name, sku, karat, stone_type,
		       price_at_purchase, quantity, image, gross_weight
		FROM order_items
		WHERE order_id = $1
		ORDER BY position`

	rows, err := dbtx.Query(ctx, query, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	var items []order.ItemSnapshot
	for rows.Next() {
		var (
			item                  order.ItemSnapshot
			sku, karat, stoneType string
		)
		if err := rows.Scan(&item.ProductID, &item.ProductName, &sku, &karat, &stoneType,
			&item.PriceAtPurchase, &item.Quantity, &item.Image, &item.GrossWeight); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		if item.SKU, err = catalog.NewSKU(sku); err != nil {
			return nil, infra.WrapRepoErr("invalid sku in order item", err)
		}
		if item.Karat, err = catalog.NewKarat(karat); err != nil {
			return nil, infra.WrapRepoErr("invalid karat in order item", err)
		}
		if item.StoneType, err = catalog.NewStoneType(stoneType); err != nil {
			return nil, infra.WrapRepoErr("invalid stone type in order item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order items", err)
	}
	return items, nil
}
