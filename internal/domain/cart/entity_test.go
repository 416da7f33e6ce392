//go:build unit

package cart_test

import (
	"testing"
	"time"

	"aurum-commerce/internal/domain/cart"
	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddItem(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("same SKU merges into one line", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		require.Len(t, c.Items(), 1)

		dup, err := cart.NewLineItem(
			uuid.New(), "RING-18K-DIA-001", catalog.Karat18, catalog.StoneDiamond,
			53500, 2, "", now,
		)
		require.NoError(t, err)
		c.AddItem(dup)

		require.Len(t, c.Items(), 1)
		assert.Equal(t, int32(3), c.Items()[0].Quantity)
		// the merged line carries the newest unit price
		assert.Equal(t, int64(53500), c.Items()[0].UnitPrice)
	})

	t.Run("different SKU appends a line", func(t *testing.T) {
		c := builder.NewCartBuilder().WithItem("CHAIN-22K-001", 31000, 1).BuildDomain()
		assert.Len(t, c.Items(), 2)
	})

	t.Run("zero quantity line is rejected at construction", func(t *testing.T) {
		_, err := cart.NewLineItem(
			uuid.New(), "CHAIN-22K-001", catalog.Karat22, catalog.StoneNone,
			31000, 0, "", now,
		)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	})
}

func TestCartItemMutations(t *testing.T) {
	t.Run("update quantity", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		itemID := c.Items()[0].ID

		require.NoError(t, c.UpdateItemQuantity(itemID, 4))
		assert.Equal(t, int32(4), c.Items()[0].Quantity)
	})

	t.Run("update to non-positive quantity is rejected", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		err := c.UpdateItemQuantity(c.Items()[0].ID, 0)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	})

	t.Run("update unknown item", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		err := c.UpdateItemQuantity(uuid.New(), 2)
		assert.ErrorIs(t, err, cart.ErrItemNotFound)
	})

	t.Run("remove item", func(t *testing.T) {
		c := builder.NewCartBuilder().WithItem("CHAIN-22K-001", 31000, 1).BuildDomain()
		require.NoError(t, c.RemoveItem(c.Items()[0].ID))
		require.Len(t, c.Items(), 1)
		assert.Equal(t, catalog.SKU("CHAIN-22K-001"), c.Items()[0].SKU)
	})

	t.Run("remove unknown item", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		assert.ErrorIs(t, c.RemoveItem(uuid.New()), cart.ErrItemNotFound)
	})
}

func TestCartDiscountSlots(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	applied := func(t *testing.T, kind cart.DiscountKind, amount int64) cart.AppliedDiscount {
		t.Helper()
		d, err := cart.NewAppliedDiscount(kind, "CODE-"+kind.String(), uuid.New(), amount, now)
		require.NoError(t, err)
		return d
	}

	t.Run("each slot holds at most one instance", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()

		require.NoError(t, c.ApplyDiscount(applied(t, cart.KindCoupon, 2000)))
		err := c.ApplyDiscount(applied(t, cart.KindCoupon, 500))
		assert.ErrorIs(t, err, cart.ErrSlotAlreadyApplied)
	})

	t.Run("the three kinds combine freely", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()

		require.NoError(t, c.ApplyDiscount(applied(t, cart.KindGiftCard, 1000)))
		require.NoError(t, c.ApplyDiscount(applied(t, cart.KindCoupon, 2000)))
		require.NoError(t, c.ApplyDiscount(applied(t, cart.KindVoucher, 500)))

		got := c.AppliedDiscounts()
		require.Len(t, got, 3)
		// fixed application order regardless of insertion order
		assert.Equal(t, cart.KindCoupon, got[0].Kind)
		assert.Equal(t, cart.KindVoucher, got[1].Kind)
		assert.Equal(t, cart.KindGiftCard, got[2].Kind)
	})

	t.Run("removing a vacant slot", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		assert.ErrorIs(t, c.RemoveDiscount(cart.KindVoucher), cart.ErrSlotNotApplied)
	})

	t.Run("removing frees the slot for reuse", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()

		require.NoError(t, c.ApplyDiscount(applied(t, cart.KindVoucher, 500)))
		require.NoError(t, c.RemoveDiscount(cart.KindVoucher))
		assert.NoError(t, c.ApplyDiscount(applied(t, cart.KindVoucher, 750)))
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := cart.NewAppliedDiscount(cart.DiscountKind("loyalty"), "X", uuid.New(), 100, now)
		assert.ErrorIs(t, err, cart.ErrInvalidDiscountKind)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := cart.NewAppliedDiscount(cart.KindCoupon, "X", uuid.New(), 0, now)
		assert.ErrorIs(t, err, cart.ErrInvalidDiscountValue)
	})
}

func TestCartTotals(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	c := builder.NewCartBuilder().
		WithoutItems().
		WithItem("CHAIN-22K-001", 100, 2).
		WithItem("STUD-18K-001", 50, 1).
		BuildDomain()

	coupon, err := cart.NewAppliedDiscount(cart.KindCoupon, "SAVE20", uuid.New(), 20, now)
	require.NoError(t, err)
	voucher, err := cart.NewAppliedDiscount(cart.KindVoucher, "FEST10", uuid.New(), 10, now)
	require.NoError(t, err)
	require.NoError(t, c.ApplyDiscount(coupon))
	require.NoError(t, c.ApplyDiscount(voucher))

	totals := c.Totals()
	assert.Equal(t, int64(250), totals.Subtotal)
	assert.Equal(t, int64(20), totals.CouponAmount)
	assert.Equal(t, int64(10), totals.VoucherAmount)
	assert.Equal(t, int64(220), totals.Total)
}

func TestCartExpiry(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ttl := 720 * time.Hour

	c := builder.NewCartBuilder().With(func(b *builder.CartBuilder) {
		b.Now = now
		b.TTL = ttl
	}).BuildDomain()

	assert.False(t, c.HasExpired(now.Add(ttl)))
	assert.True(t, c.HasExpired(now.Add(ttl).Add(time.Second)))

	// any mutation extends the window
	later := now.Add(100 * time.Hour)
	c.Touch(later, ttl)
	assert.False(t, c.HasExpired(now.Add(ttl).Add(time.Second)))
	assert.Equal(t, later.Add(ttl), c.ExpiresAt())
}

func TestCartClear(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	c := builder.NewCartBuilder().BuildDomain()
	d, err := cart.NewAppliedDiscount(cart.KindCoupon, "SAVE20", uuid.New(), 20, now)
	require.NoError(t, err)
	require.NoError(t, c.ApplyDiscount(d))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.AppliedDiscounts())
}
