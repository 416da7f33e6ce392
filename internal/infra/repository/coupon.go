package repository

import (
	"context"
	"math"
	"time"

	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/pgconv"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

// CouponRepository implements the coupon flavour of the discount consumer
// contract: a rule-based price reduction, redeemable once per user.
type CouponRepository struct{}

func NewCouponRepository() *CouponRepository {
	return &CouponRepository{}
}

var _ shared.DiscountConsumer = (*CouponRepository)(nil)

func (r *CouponRepository) ValidateForRedemption(ctx context.Context, dbtx db.DBTX, code string, subtotal int64, userID uuid.UUID, now time.Time) (*shared.DiscountValidation, error) {
	const query = `
		SELECT c.id, c.amount_off, c.percent_off, c.min_subtotal, c.valid_from, c.valid_to, c.is_active,
		       EXISTS (SELECT 1 FROM coupon_redemptions cr WHERE cr.coupon_id = c.id AND cr.user_id = $2)
		FROM coupons c
		WHERE c.code = $1`

	var (
		id                   uuid.UUID
		amountOff            *int64
		percentOff           *float64
		minSubtotal          int64
		validFrom, validTo   *time.Time
		isActive, alreadyUsed bool
	)
	err := dbtx.QueryRow(ctx, query, code, userID).Scan(
		&id, &amountOff, &percentOff, &minSubtotal, &validFrom, &validTo, &isActive, &alreadyUsed)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon", err)
	}

	if !isActive || !withinWindow(now, validFrom, validTo) {
		return nil, infra.WrapRepoErr("coupon is not redeemable", nil, infra.KindConflict)
	}
	if alreadyUsed {
		return nil, infra.WrapRepoErr("coupon already used by this user", nil, infra.KindConflict)
	}
	if subtotal < minSubtotal {
		return nil, infra.WrapRepoErr("subtotal below coupon minimum", nil, infra.KindConflict)
	}

	amount := couponAmount(subtotal, amountOff, percentOff)
	if amount <= 0 {
		return nil, infra.WrapRepoErr("coupon yields no discount", nil, infra.KindConflict)
	}

	return &shared.DiscountValidation{ReferenceID: id, Code: code, Amount: amount}, nil
}

func (r *CouponRepository) MarkConsumed(ctx context.Context, dbtx db.DBTX, code string, userID uuid.UUID, _ int64) error {
	const query = `
		INSERT INTO coupon_redemptions (coupon_id, user_id)
		SELECT id, $2 FROM coupons WHERE code = $1`

	tag, err := dbtx.Exec(ctx, query, code, userID)
	if err != nil {
		if isDuplicateKey(err) {
			return infra.WrapRepoErr("coupon already used by this user", err, infra.KindConflict)
		}
		return infra.WrapRepoErr("failed to consume coupon", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	return nil
}

func couponAmount(subtotal int64, amountOff *int64, percentOff *float64) int64 {
	if amountOff != nil {
		return min64(*amountOff, subtotal)
	}
	if percentOff != nil {
		return min64(int64(math.Round(float64(subtotal)*(*percentOff)/100)), subtotal)
	}
	return 0
}

// withinWindow reports whether now falls inside the optional [from, to]
// validity bounds. Bounds are inclusive.
func withinWindow(now time.Time, from, to *time.Time) bool {
	if from != nil && now.Before(*from) {
		return false
	}
	if to != nil && now.After(*to) {
		return false
	}
	return true
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
