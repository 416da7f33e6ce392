package repository

import (
	"context"
	"time"

	"aurum-commerce/internal/domain/cart"
	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

var _ shared.CartRepository = (*CartRepository)(nil)

func (r *CartRepository) Create(ctx context.Context, dbtx db.DBTX, c *cart.Cart) error {
	const query = `
		INSERT INTO carts (id, owner_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := dbtx.Exec(ctx, query, c.ID(), c.OwnerID(), c.ExpiresAt(), c.CreatedAt(), c.UpdatedAt())
	if err != nil {
		if isDuplicateKey(err) {
			return infra.WrapRepoErr("cart already exists for owner", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create cart", err)
	}
	return nil
}

func (r *CartRepository) FindByOwner(ctx context.Context, dbtx db.DBTX, ownerID string) (*cart.Cart, error) {
	const query = `
		SELECT id, owner_id, expires_at, created_at, updated_at
		FROM carts
		WHERE owner_id = $1 AND deleted_at IS NULL`

	var (
		id                             uuid.UUID
		owner                          string
		expiresAt, createdAt, updatedAt time.Time
	)
	err := dbtx.QueryRow(ctx, query, ownerID).Scan(&id, &owner, &expiresAt, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart", err)
	}

	items, err := r.loadItems(ctx, dbtx, id)
	if err != nil {
		return nil, err
	}
	slots, err := r.loadDiscounts(ctx, dbtx, id)
	if err != nil {
		return nil, err
	}

	return cart.ReconstructCart(id, owner, items, slots, expiresAt, createdAt, updatedAt), nil
}

// Save rewrites the cart's lines and slots in place. Carts are small enough
// that delete-and-reinsert beats diffing.
func (r *CartRepository) Save(ctx context.Context, dbtx db.DBTX, c *cart.Cart) error {
	const touchQuery = `
		UPDATE carts SET expires_at = $2, updated_at = $3 WHERE id = $1`

	if _, err := dbtx.Exec(ctx, touchQuery, c.ID(), c.ExpiresAt(), c.UpdatedAt()); err != nil {
		return infra.WrapRepoErr("failed to update cart", err)
	}

	if _, err := dbtx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, c.ID()); err != nil {
		return infra.WrapRepoErr("failed to clear cart items", err)
	}
	if _, err := dbtx.Exec(ctx, `DELETE FROM cart_discounts WHERE cart_id = $1`, c.ID()); err != nil {
		return infra.WrapRepoErr("failed to clear cart discounts", err)
	}

	const itemQuery = `
		INSERT INTO cart_items (id, cart_id, product_id, sku, karat, stone_type, unit_price, quantity, selected_image, position, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for i, item := range c.Items() {
		_, err := dbtx.Exec(ctx, itemQuery,
			item.ID, c.ID(), item.ProductID, item.SKU.String(), item.Karat.String(), item.StoneType.String(),
			item.UnitPrice, item.Quantity, item.SelectedImage, i, item.AddedAt)
		if err != nil {
			return infra.WrapRepoErr("failed to insert cart item", err)
		}
	}

	const slotQuery = `
		INSERT INTO cart_discounts (cart_id, kind, code, reference_id, amount, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, d := range c.AppliedDiscounts() {
		_, err := dbtx.Exec(ctx, slotQuery, c.ID(), d.Kind.String(), d.Code, d.ReferenceID, d.Amount, d.AppliedAt)
		if err != nil {
			return infra.WrapRepoErr("failed to insert cart discount", err)
		}
	}

	return nil
}

func (r *CartRepository) SoftDeleteExpired(ctx context.Context, dbtx db.DBTX, now time.Time) (int64, error) {
	const query = `
		UPDATE carts SET deleted_at = $1
		WHERE deleted_at IS NULL AND expires_at < $1`

	tag, err := dbtx.Exec(ctx, query, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire carts", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CartRepository) loadItems(ctx context.Context, dbtx db.DBTX, cartID uuid.UUID) ([]cart.LineItem, error) {
	const query = `
		SELECT id, product_id, sku, karat, stone_type, unit_price, quantity, selected_image, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY position`

	rows, err := dbtx.Query(ctx, query, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart items", err)
	}
	defer rows.Close()

	var items []cart.LineItem
	for rows.Next() {
		var (
			item                  cart.LineItem
			sku, karat, stoneType string
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &sku, &karat, &stoneType,
			&item.UnitPrice, &item.Quantity, &item.SelectedImage, &item.AddedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item", err)
		}
		if item.SKU, err = catalog.NewSKU(sku); err != nil {
			return nil, infra.WrapRepoErr("invalid sku in cart item", err)
		}
		if item.Karat, err = catalog.NewKarat(karat); err != nil {
			return nil, infra.WrapRepoErr("invalid karat in cart item", err)
		}
		if item.StoneType, err = catalog.NewStoneType(stoneType); err != nil {
			return nil, infra.WrapRepoErr("invalid stone type in cart item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart items", err)
	}
	return items, nil
}

func (r *CartRepository) loadDiscounts(ctx context.Context, dbtx db.DBTX, cartID uuid.UUID) ([]cart.AppliedDiscount, error) {
	const query = `
		SELECT kind, code, reference_id, amount, applied_at
		FROM cart_discounts
		WHERE cart_id = $1`

	rows, err := dbtx.Query(ctx, query, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart discounts", err)
	}
	defer rows.Close()

	var slots []cart.AppliedDiscount
	for rows.Next() {
		var (
			d    cart.AppliedDiscount
			kind string
		)
		if err := rows.Scan(&kind, &d.Code, &d.ReferenceID, &d.Amount, &d.AppliedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart discount", err)
		}
		if d.Kind, err = cart.NewDiscountKind(kind); err != nil {
			return nil, infra.WrapRepoErr("invalid discount kind in cart", err)
		}
		slots = append(slots, d)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart discounts", err)
	}
	return slots, nil
}
