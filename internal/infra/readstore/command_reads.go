package readstore

import (
	"context"

	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/shared"
)

// CommandReads serves the write side's validation lookups. It deliberately
// returns flat snapshots instead of domain entities so commands can inspect
// current state without loading aggregates.
type CommandReads struct {
	db db.DBTX
}

func NewCommandReads(dbtx db.DBTX) *CommandReads {
	return &CommandReads{db: dbtx}
}

var _ shared.CommandReads = (*CommandReads)(nil)

func (r *CommandReads) VariantBySKU(ctx context.Context, sku catalog.SKU) (*shared.VariantSnapshot, error) {
	const query = `
		SELECT v.id, v.product_id, p.name, p.image, v.sku, v.karat, v.stone_type,
		       v.price, v.stock, v.gross_weight, v.is_available
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.sku = $1 AND p.is_active`

	var snap shared.VariantSnapshot
	err := r.db.QueryRow(ctx, query, sku.String()).Scan(
		&snap.VariantID,
		&snap.ProductID,
		&snap.ProductName,
		&snap.ProductImage,
		&snap.SKU,
		&snap.Karat,
		&snap.StoneType,
		&snap.Price,
		&snap.Stock,
		&snap.GrossWeight,
		&snap.IsAvailable,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("variant not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find variant by SKU", err)
	}
	return &snap, nil
}

func (r *CommandReads) UserByEmail(ctx context.Context, email string) (*shared.UserSnapshot, error) {
	const query = `
		SELECT id, email, password_hash, role, is_active, last_login
		FROM users
		WHERE email = $1`

	var snap shared.UserSnapshot
	err := r.db.QueryRow(ctx, query, email).Scan(
		&snap.ID,
		&snap.Email,
		&snap.PasswordHash,
		&snap.Role,
		&snap.IsActive,
		&snap.LastLogin,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by email", err)
	}
	return &snap, nil
}
