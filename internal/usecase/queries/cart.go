package queries

import (
	"context"

	"aurum-commerce/internal/domain/cart"
	"aurum-commerce/internal/domain/pricing"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/pkg/config"
	"aurum-commerce/internal/pkg/errs"
)

var ErrCartNotFound = errs.New("cart not found")

type CartQueries interface {
	GetByOwner(ctx context.Context, ownerID string) (*CartView, error)
}

type CartReadStore interface {
	// FindByOwner returns the persisted cart rows; the totals fields are
	// left zero for the query service to compute.
	FindByOwner(ctx context.Context, ownerID string) (*CartView, error)
}

type cartQueriesImpl struct {
	readStore CartReadStore
	checkout  config.CheckoutConfig
}

func NewCartQueries(readStore CartReadStore, checkout config.CheckoutConfig) CartQueries {
	return &cartQueriesImpl{
		readStore: readStore,
		checkout:  checkout,
	}
}

// GetByOwner recomputes totals from the stored lines and discount slots on
// every read, so a stale stored figure can never be served.
func (q *cartQueriesImpl) GetByOwner(ctx context.Context, ownerID string) (*CartView, error) {
	view, err := q.readStore.FindByOwner(ctx, ownerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}

	lines := make([]pricing.LineAmount, len(view.Items))
	for i, item := range view.Items {
		lines[i] = pricing.LineAmount{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
		view.Items[i].LineTotal = item.UnitPrice * int64(item.Quantity)
	}

	var discounts pricing.DiscountAmounts
	for i := range view.Discounts {
		amount := view.Discounts[i].Amount
		switch view.Discounts[i].Kind {
		case cart.KindCoupon.String():
			discounts.Coupon = &amount
		case cart.KindVoucher.String():
			discounts.Voucher = &amount
		case cart.KindGiftCard.String():
			discounts.GiftCardBalance = &amount
		}
	}

	totals := pricing.ComputeCartTotals(lines, discounts)
	view.Subtotal = totals.Subtotal
	view.CouponAmount = totals.CouponAmount
	view.VoucherAmount = totals.VoucherAmount
	view.GiftCardAmount = totals.GiftCardAmount

	view.ShippingCharge = q.checkout.ShippingCharge
	if totals.Subtotal >= q.checkout.FreeShippingThreshold || len(view.Items) == 0 {
		view.ShippingCharge = 0
	}
	view.Total = totals.Total + view.ShippingCharge

	return view, nil
}
