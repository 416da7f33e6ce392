//go:build unit

package pricing_test

import (
	"testing"

	"aurum-commerce/internal/domain/pricing"

	"github.com/stretchr/testify/assert"
)

func amount(v int64) *int64 { return &v }

func TestComputeCartTotals(t *testing.T) {
	lines := []pricing.LineAmount{
		{UnitPrice: 100, Quantity: 2},
		{UnitPrice: 50, Quantity: 1},
	}

	t.Run("no discounts", func(t *testing.T) {
		got := pricing.ComputeCartTotals(lines, pricing.DiscountAmounts{})
		assert.Equal(t, int64(250), got.Subtotal)
		assert.Equal(t, int64(250), got.Total)
	})

	t.Run("coupon and voucher stack", func(t *testing.T) {
		got := pricing.ComputeCartTotals(lines, pricing.DiscountAmounts{
			Coupon:  amount(20),
			Voucher: amount(10),
		})
		assert.Equal(t, int64(250), got.Subtotal)
		assert.Equal(t, int64(20), got.CouponAmount)
		assert.Equal(t, int64(10), got.VoucherAmount)
		assert.Equal(t, int64(220), got.Total)
	})

	t.Run("gift card capped at the remainder", func(t *testing.T) {
		got := pricing.ComputeCartTotals(lines, pricing.DiscountAmounts{
			Coupon:          amount(200),
			GiftCardBalance: amount(500),
		})
		assert.Equal(t, int64(200), got.CouponAmount)
		assert.Equal(t, int64(50), got.GiftCardAmount)
		assert.Equal(t, int64(0), got.Total)
	})

	t.Run("total clamps at zero", func(t *testing.T) {
		got := pricing.ComputeCartTotals(lines, pricing.DiscountAmounts{
			Coupon:  amount(200),
			Voucher: amount(200),
		})
		assert.Equal(t, int64(0), got.Total)
	})

	t.Run("non-positive slot amounts are ignored", func(t *testing.T) {
		got := pricing.ComputeCartTotals(lines, pricing.DiscountAmounts{
			Coupon:  amount(0),
			Voucher: amount(-5),
		})
		assert.Equal(t, int64(0), got.CouponAmount)
		assert.Equal(t, int64(0), got.VoucherAmount)
		assert.Equal(t, int64(250), got.Total)
	})

	t.Run("empty cart", func(t *testing.T) {
		got := pricing.ComputeCartTotals(nil, pricing.DiscountAmounts{
			GiftCardBalance: amount(100),
		})
		assert.Equal(t, int64(0), got.Subtotal)
		assert.Equal(t, int64(0), got.GiftCardAmount)
		assert.Equal(t, int64(0), got.Total)
	})

	t.Run("invariant holds across random-ish combinations", func(t *testing.T) {
		for _, d := range []pricing.DiscountAmounts{
			{},
			{Coupon: amount(1)},
			{Voucher: amount(249)},
			{Coupon: amount(125), Voucher: amount(125)},
			{Coupon: amount(100), Voucher: amount(100), GiftCardBalance: amount(100)},
		} {
			got := pricing.ComputeCartTotals(lines, d)
			expected := got.Subtotal - got.CouponAmount - got.VoucherAmount - got.GiftCardAmount
			if expected < 0 {
				expected = 0
			}
			assert.Equal(t, expected, got.Total)
			assert.GreaterOrEqual(t, got.Total, int64(0))
		}
	})
}
