package cart

import (
	"time"

	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/domain/pricing"

	"github.com/google/uuid"
)

// Cart is the mutable pre-order aggregate. It is created lazily on first
// access, holds an ordered list of line items plus up to three independent
// discount slots, and soft-expires after inactivity.
type Cart struct {
	id        uuid.UUID
	ownerID   string // user id or guest session id
	items     []LineItem
	slots     map[DiscountKind]AppliedDiscount
	expiresAt time.Time
	createdAt time.Time
	updatedAt time.Time
}

func NewCart(ownerID string, now time.Time, ttl time.Duration) *Cart {
	return &Cart{
		id:        uuid.New(),
		ownerID:   ownerID,
		items:     nil,
		slots:     make(map[DiscountKind]AppliedDiscount),
		expiresAt: now.Add(ttl),
		createdAt: now,
		updatedAt: now,
	}
}

func ReconstructCart(
	id uuid.UUID,
	ownerID string,
	items []LineItem,
	slots []AppliedDiscount,
	expiresAt, createdAt, updatedAt time.Time,
) *Cart {
	slotMap := make(map[DiscountKind]AppliedDiscount, len(slots))
	for _, s := range slots {
		slotMap[s.Kind] = s
	}
	return &Cart{
		id:        id,
		ownerID:   ownerID,
		items:     items,
		slots:     slotMap,
		expiresAt: expiresAt,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (c *Cart) ID() uuid.UUID        { return c.id }
func (c *Cart) OwnerID() string      { return c.ownerID }
func (c *Cart) Items() []LineItem    { return c.items }
func (c *Cart) ExpiresAt() time.Time { return c.expiresAt }
func (c *Cart) CreatedAt() time.Time { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time { return c.updatedAt }

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) HasExpired(now time.Time) bool {
	return now.After(c.expiresAt)
}

// Touch extends the inactivity window after any mutation.
func (c *Cart) Touch(now time.Time, ttl time.Duration) {
	c.expiresAt = now.Add(ttl)
	c.updatedAt = now
}

// AddItem appends a line, or bumps the quantity when the same SKU is
// already present.
func (c *Cart) AddItem(item LineItem) {
	for i := range c.items {
		if c.items[i].SKU == item.SKU {
			c.items[i].Quantity += item.Quantity
			c.items[i].UnitPrice = item.UnitPrice
			return
		}
	}
	c.items = append(c.items, item)
}

func (c *Cart) UpdateItemQuantity(itemID uuid.UUID, quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items[i].Quantity = quantity
			return nil
		}
	}
	return ErrItemNotFound
}

func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (c *Cart) FindItemBySKU(sku catalog.SKU) (LineItem, bool) {
	for _, item := range c.items {
		if item.SKU == sku {
			return item, true
		}
	}
	return LineItem{}, false
}

// ApplyDiscount occupies one of the three slots. At most one active
// instance per kind; kinds combine freely.
func (c *Cart) ApplyDiscount(d AppliedDiscount) error {
	if !d.Kind.IsValid() {
		return ErrInvalidDiscountKind
	}
	if _, exists := c.slots[d.Kind]; exists {
		return ErrSlotAlreadyApplied
	}
	c.slots[d.Kind] = d
	return nil
}

func (c *Cart) RemoveDiscount(kind DiscountKind) error {
	if _, exists := c.slots[kind]; !exists {
		return ErrSlotNotApplied
	}
	delete(c.slots, kind)
	return nil
}

func (c *Cart) Discount(kind DiscountKind) (AppliedDiscount, bool) {
	d, ok := c.slots[kind]
	return d, ok
}

// AppliedDiscounts returns occupied slots in the fixed application order:
// coupon, voucher, gift card.
func (c *Cart) AppliedDiscounts() []AppliedDiscount {
	out := make([]AppliedDiscount, 0, 3)
	for _, kind := range []DiscountKind{KindCoupon, KindVoucher, KindGiftCard} {
		if d, ok := c.slots[kind]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Totals recomputes live cart totals; cart totals are never persisted.
func (c *Cart) Totals() pricing.CartTotals {
	lines := make([]pricing.LineAmount, len(c.items))
	for i, item := range c.items {
		lines[i] = pricing.LineAmount{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}

	var discounts pricing.DiscountAmounts
	if d, ok := c.slots[KindCoupon]; ok {
		amount := d.Amount
		discounts.Coupon = &amount
	}
	if d, ok := c.slots[KindVoucher]; ok {
		amount := d.Amount
		discounts.Voucher = &amount
	}
	if d, ok := c.slots[KindGiftCard]; ok {
		amount := d.Amount
		discounts.GiftCardBalance = &amount
	}

	return pricing.ComputeCartTotals(lines, discounts)
}

// Clear empties items and slots after a successful checkout.
func (c *Cart) Clear() {
	c.items = nil
	c.slots = make(map[DiscountKind]AppliedDiscount)
}
