package readstore

import (
	"context"

	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/queries"
)

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(dbtx db.DBTX) *CartReadStore {
	return &CartReadStore{db: dbtx}
}

var _ queries.CartReadStore = (*CartReadStore)(nil)

func (r *CartReadStore) FindByOwner(ctx context.Context, ownerID string) (*queries.CartView, error) {
	const cartQuery = `
		SELECT id, owner_id, expires_at, updated_at
		FROM carts
		WHERE owner_id = $1 AND deleted_at IS NULL`

	var view queries.CartView
	err := r.db.QueryRow(ctx, cartQuery, ownerID).Scan(
		&view.ID,
		&view.OwnerID,
		&view.ExpiresAt,
		&view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart by owner", err)
	}

	if err := r.loadItems(ctx, &view); err != nil {
		return nil, err
	}
	if err := r.loadDiscounts(ctx, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *CartReadStore) loadItems(ctx context.Context, view *queries.CartView) error {
	const query = `
		SELECT id, product_id, sku, karat, stone_type, unit_price, quantity, selected_image
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, query, view.ID)
	if err != nil {
		return infra.WrapRepoErr("failed to load cart items", err)
	}
	defer rows.Close()

	view.Items = []queries.CartItemView{}
	for rows.Next() {
		var item queries.CartItemView
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.SKU,
			&item.Karat,
			&item.StoneType,
			&item.UnitPrice,
			&item.Quantity,
			&item.SelectedImage,
		); err != nil {
			return infra.WrapRepoErr("failed to scan cart item", err)
		}
		view.Items = append(view.Items, item)
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr("failed to iterate cart items", err)
	}
	return nil
}

func (r *CartReadStore) loadDiscounts(ctx context.Context, view *queries.CartView) error {
	const query = `
		SELECT kind, code, amount
		FROM cart_discounts
		WHERE cart_id = $1
		ORDER BY CASE kind WHEN 'coupon' THEN 0 WHEN 'voucher' THEN 1 ELSE 2 END`

	rows, err := r.db.Query(ctx, query, view.ID)
	if err != nil {
		return infra.WrapRepoErr("failed to load cart discounts", err)
	}
	defer rows.Close()

	view.Discounts = []queries.CartDiscountView{}
	for rows.Next() {
		var d queries.CartDiscountView
		if err := rows.Scan(&d.Kind, &d.Code, &d.Amount); err != nil {
			return infra.WrapRepoErr("failed to scan cart discount", err)
		}
		view.Discounts = append(view.Discounts, d)
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr("failed to iterate cart discounts", err)
	}
	return nil
}
