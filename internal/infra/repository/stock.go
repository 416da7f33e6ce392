package repository

import (
	"context"

	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

// StockLedger mutates variant stock through single-row conditional updates.
// The "stock >= quantity" guard inside the UPDATE is what keeps concurrent
// checkouts from driving stock negative; there is no other locking.
type StockLedger struct{}

func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

var _ shared.StockLedger = (*StockLedger)(nil)

func (s *StockLedger) CheckAvailable(ctx context.Context, dbtx db.DBTX, sku catalog.SKU, quantity int32) (bool, error) {
	const query = `
		SELECT is_available AND stock >= $2
		FROM variants
		WHERE sku = $1`

	var ok bool
	err := dbtx.QueryRow(ctx, query, sku.String(), quantity).Scan(&ok)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return false, infra.WrapRepoErr("variant not found", err, infra.KindNotFound)
		}
		return false, infra.WrapRepoErr("failed to check stock", err)
	}
	return ok, nil
}

func (s *StockLedger) Reserve(ctx context.Context, dbtx db.DBTX, productID uuid.UUID, sku catalog.SKU, quantity int32) (int32, error) {
	const query = `
		UPDATE variants
		SET stock = stock - $3, updated_at = now()
		WHERE product_id = $1 AND sku = $2 AND is_available AND stock >= $3
		RETURNING stock`

	var newStock int32
	err := dbtx.QueryRow(ctx, query, productID, sku.String(), quantity).Scan(&newStock)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, s.classifyGuardMiss(ctx, dbtx, sku)
		}
		return 0, infra.WrapRepoErr("failed to reserve stock", err)
	}
	return newStock, nil
}

func (s *StockLedger) Release(ctx context.Context, dbtx db.DBTX, productID uuid.UUID, sku catalog.SKU, quantity int32) (int32, error) {
	const query = `
		UPDATE variants
		SET stock = stock + $3, updated_at = now()
		WHERE product_id = $1 AND sku = $2
		RETURNING stock`

	var newStock int32
	err := dbtx.QueryRow(ctx, query, productID, sku.String(), quantity).Scan(&newStock)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, infra.WrapRepoErr("variant not found for release", err, infra.KindNotFound)
		}
		return 0, infra.WrapRepoErr("failed to release stock", err)
	}
	return newStock, nil
}

// A zero-row conditional update is either a missing variant or a failed
// stock guard; tell them apart so callers can report conflict vs not-found.
func (s *StockLedger) classifyGuardMiss(ctx context.Context, dbtx db.DBTX, sku catalog.SKU) error {
	const query = `SELECT stock FROM variants WHERE sku = $1`

	var stock int32
	err := dbtx.QueryRow(ctx, query, sku.String()).Scan(&stock)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return infra.WrapRepoErr("variant not found", nil, infra.KindNotFound)
		}
		return infra.WrapRepoErr("failed to inspect variant stock", err)
	}
	return infra.WrapRepoErr("insufficient stock", nil, infra.KindConflict)
}
