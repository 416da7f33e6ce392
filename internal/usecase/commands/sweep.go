package commands

import (
	"context"
	"log/slog"
	"time"

	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/clock"
	"aurum-commerce/internal/usecase/shared"
)

// Sweeper ports; the voucher, gift-card, and cart repositories each
// implement the stale-row pass for their table.
type VoucherSweeper interface {
	ExpireStale(ctx context.Context, dbtx db.DBTX, now time.Time) (int64, error)
}

type GiftCardSweeper interface {
	ExpireStale(ctx context.Context, dbtx db.DBTX, now time.Time) (int64, error)
}

type CartSweeper interface {
	SoftDeleteExpired(ctx context.Context, dbtx db.DBTX, now time.Time) (int64, error)
}

type SweepResult struct {
	ExpiredVouchers  int64
	ExpiredGiftCards int64
	ExpiredCarts     int64
}

type SweepCommands interface {
	// RunExpirySweep flips stale vouchers and gift cards to expired and
	// soft-deletes carts past their inactivity window. Each pass is a
	// single conditional UPDATE, so concurrent redemptions either beat the
	// sweep or observe the expiry; nothing is half-expired.
	RunExpirySweep(ctx context.Context) (*SweepResult, error)
}

type sweepUseCaseImpl struct {
	uow       shared.UnitOfWork
	vouchers  VoucherSweeper
	giftCards GiftCardSweeper
	carts     CartSweeper
	clock     clock.Clock
	logger    *slog.Logger
}

func NewSweepUseCase(
	uow shared.UnitOfWork,
	vouchers VoucherSweeper,
	giftCards GiftCardSweeper,
	carts CartSweeper,
	clk clock.Clock,
	logger *slog.Logger,
) SweepCommands {
	return &sweepUseCaseImpl{
		uow:       uow,
		vouchers:  vouchers,
		giftCards: giftCards,
		carts:     carts,
		clock:     clk,
		logger:    logger,
	}
}

func (uc *sweepUseCaseImpl) RunExpirySweep(ctx context.Context) (*SweepResult, error) {
	now := uc.clock.Now()
	var result SweepResult

	err := uc.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		n, err := uc.vouchers.ExpireStale(ctx, dbtx, now)
		if err != nil {
			return err
		}
		result.ExpiredVouchers = n

		n, err = uc.giftCards.ExpireStale(ctx, dbtx, now)
		if err != nil {
			return err
		}
		result.ExpiredGiftCards = n

		n, err = uc.carts.SoftDeleteExpired(ctx, dbtx, now)
		if err != nil {
			return err
		}
		result.ExpiredCarts = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "expiry sweep completed",
		slog.Int64("vouchers", result.ExpiredVouchers),
		slog.Int64("gift_cards", result.ExpiredGiftCards),
		slog.Int64("carts", result.ExpiredCarts),
	)
	return &result, nil
}
