package repository

import (
	"context"
	"time"

	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

// VoucherRepository implements the voucher flavour of the discount consumer
// contract: a single-use flat amount tied to whoever redeems it first.
type VoucherRepository struct{}

func NewVoucherRepository() *VoucherRepository {
	return &VoucherRepository{}
}

var _ shared.DiscountConsumer = (*VoucherRepository)(nil)

func (r *VoucherRepository) ValidateForRedemption(ctx context.Context, dbtx db.DBTX, code string, subtotal int64, _ uuid.UUID, now time.Time) (*shared.DiscountValidation, error) {
	const query = `
		SELECT id, amount, status, valid_from, valid_to
		FROM vouchers
		WHERE code = $1`

	var (
		id                 uuid.UUID
		amount             int64
		status             string
		validFrom, validTo *time.Time
	)
	err := dbtx.QueryRow(ctx, query, code).Scan(&id, &amount, &status, &validFrom, &validTo)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("voucher not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find voucher", err)
	}

	if status != "active" || !withinWindow(now, validFrom, validTo) {
		return nil, infra.WrapRepoErr("voucher is not redeemable", nil, infra.KindConflict)
	}

	return &shared.DiscountValidation{ReferenceID: id, Code: code, Amount: min64(amount, subtotal)}, nil
}

// MarkConsumed claims the voucher with a conditional status flip; losing
// the race to another checkout surfaces as a conflict.
func (r *VoucherRepository) MarkConsumed(ctx context.Context, dbtx db.DBTX, code string, userID uuid.UUID, _ int64) error {
	const query = `
		UPDATE vouchers
		SET status = 'used', used_by = $2, used_at = now()
		WHERE code = $1 AND status = 'active'`

	tag, err := dbtx.Exec(ctx, query, code, userID)
	if err != nil {
		return infra.WrapRepoErr("failed to consume voucher", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyConsumeMiss(ctx, dbtx, code)
	}
	return nil
}

func (r *VoucherRepository) classifyConsumeMiss(ctx context.Context, dbtx db.DBTX, code string) error {
	const query = `SELECT status FROM vouchers WHERE code = $1`

	var status string
	err := dbtx.QueryRow(ctx, query, code).Scan(&status)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return infra.WrapRepoErr("voucher not found", nil, infra.KindNotFound)
		}
		return infra.WrapRepoErr("failed to inspect voucher", err)
	}
	return infra.WrapRepoErr("voucher already "+status, nil, infra.KindConflict)
}

// ExpireStale flips active vouchers past their validity window; run by the
// externally-triggered sweep.
func (r *VoucherRepository) ExpireStale(ctx context.Context, dbtx db.DBTX, now time.Time) (int64, error) {
	const query = `
		UPDATE vouchers
		SET status = 'expired'
		WHERE status = 'active' AND valid_to IS NOT NULL AND valid_to < $1`

	tag, err := dbtx.Exec(ctx, query, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire vouchers", err)
	}
	return tag.RowsAffected(), nil
}
