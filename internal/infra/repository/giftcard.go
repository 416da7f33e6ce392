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

// GiftCardRepository implements the gift-card flavour of the discount
// consumer contract: a monetary balance drawn down per redemption rather
// than a one-shot code.
type GiftCardRepository struct{}

func NewGiftCardRepository() *GiftCardRepository {
	return &GiftCardRepository{}
}

var _ shared.DiscountConsumer = (*GiftCardRepository)(nil)

func (r *GiftCardRepository) ValidateForRedemption(ctx context.Context, dbtx db.DBTX, code string, subtotal int64, _ uuid.UUID, now time.Time) (*shared.DiscountValidation, error) {
	const query = `
		SELECT id, balance, status, expires_at
		FROM gift_cards
		WHERE code = $1`

	var (
		id        uuid.UUID
		balance   int64
		status    string
		expiresAt *time.Time
	)
	err := dbtx.QueryRow(ctx, query, code).Scan(&id, &balance, &status, &expiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("gift card not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find gift card", err)
	}

	if status != "active" || !withinWindow(now, nil, expiresAt) {
		return nil, infra.WrapRepoErr("gift card is not redeemable", nil, infra.KindConflict)
	}
	if balance <= 0 {
		return nil, infra.WrapRepoErr("gift card has no balance", nil, infra.KindConflict)
	}

	// The redeemable amount is the balance; the pricing engine caps it at
	// whatever remains after coupon and voucher.
	return &shared.DiscountValidation{ReferenceID: id, Code: code, Amount: min64(balance, subtotal)}, nil
}

// MarkConsumed draws down the balance with a conditional update guarded by
// balance >= amount, mirroring the stock ledger's decrement discipline.
func (r *GiftCardRepository) MarkConsumed(ctx context.Context, dbtx db.DBTX, code string, userID uuid.UUID, amount int64) error {
	const query = `
		UPDATE gift_cards
		SET balance = balance - $2,
		    status = CASE WHEN balance - $2 = 0 THEN 'depleted' ELSE status END,
		    updated_at = now()
		WHERE code = $1 AND status = 'active' AND balance >= $2
		RETURNING id`

	var id uuid.UUID
	err := dbtx.QueryRow(ctx, query, code, amount).Scan(&id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return r.classifyConsumeMiss(ctx, dbtx, code)
		}
		return infra.WrapRepoErr("failed to redeem gift card", err)
	}

	const redemptionQuery = `
		INSERT INTO gift_card_redemptions (gift_card_id, user_id, amount)
		VALUES ($1, $2, $3)`

	if _, err := dbtx.Exec(ctx, redemptionQuery, id, userID, amount); err != nil {
		return infra.WrapRepoErr("failed to record gift card redemption", err)
	}
	return nil
}

func (r *GiftCardRepository) classifyConsumeMiss(ctx context.Context, dbtx db.DBTX, code string) error {
	const query = `SELECT status, balance FROM gift_cards WHERE code = $1`

	var (
		status  string
		balance int64
	)
	err := dbtx.QueryRow(ctx, query, code).Scan(&status, &balance)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return infra.WrapRepoErr("gift card not found", nil, infra.KindNotFound)
		}
		return infra.WrapRepoErr("failed to inspect gift card", err)
	}
	return infra.WrapRepoErr("gift card not redeemable for requested amount", nil, infra.KindConflict)
}

// ExpireStale marks active cards past their expiry; run by the
// externally-triggered sweep.
func (r *GiftCardRepository) ExpireStale(ctx context.Context, dbtx db.DBTX, now time.Time) (int64, error) {
	const query = `
		UPDATE gift_cards
		SET status = 'expired', updated_at = now()
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at < $1`

	tag, err := dbtx.Exec(ctx, query, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire gift cards", err)
	}
	return tag.RowsAffected(), nil
}
