package pricing

// LineAmount is the priced portion of a cart line the totals calculation
// needs.
type LineAmount struct {
	UnitPrice int64
	Quantity  int32
}

// DiscountAmounts holds the amounts the three discount collaborators
// computed against the pre-discount subtotal. A nil field means the slot is
// not applied. GiftCardBalance is the redeemable balance, not the final
// redemption; the engine caps it.
type DiscountAmounts struct {
	Coupon          *int64
	Voucher         *int64
	GiftCardBalance *int64
}

type CartTotals struct {
	Subtotal       int64
	CouponAmount   int64
	VoucherAmount  int64
	GiftCardAmount int64
	Total          int64
}

// ComputeCartTotals applies the three discount slots in fixed order:
// coupon, then voucher, then gift card. Coupon and voucher amounts were
// computed independently against the pre-discount subtotal; the gift-card
// redemption is capped at whatever remains after the first two. The total
// clamps at zero rather than erroring.
func ComputeCartTotals(items []LineAmount, discounts DiscountAmounts) CartTotals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	totals := CartTotals{Subtotal: subtotal}

	if discounts.Coupon != nil && *discounts.Coupon > 0 {
		totals.CouponAmount = *discounts.Coupon
	}
	if discounts.Voucher != nil && *discounts.Voucher > 0 {
		totals.VoucherAmount = *discounts.Voucher
	}

	remaining := subtotal - totals.CouponAmount - totals.VoucherAmount
	if remaining < 0 {
		remaining = 0
	}

	if discounts.GiftCardBalance != nil && *discounts.GiftCardBalance > 0 {
		totals.GiftCardAmount = min64(*discounts.GiftCardBalance, remaining)
	}

	totals.Total = subtotal - totals.CouponAmount - totals.VoucherAmount - totals.GiftCardAmount
	if totals.Total < 0 {
		totals.Total = 0
	}

	return totals
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
