package cart

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCartExpired          = errors.New("cart has expired")
	ErrItemNotFound         = errors.New("cart item not found")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrSlotAlreadyApplied   = errors.New("discount slot already applied")
	ErrSlotNotApplied       = errors.New("discount slot not applied")
	ErrInvalidDiscountKind  = errors.New("invalid discount kind")
	ErrInvalidDiscountValue = errors.New("discount amount must be positive")
)

// DiscountKind names one of the three independent discount slots. The kinds
// may combine freely; they are never mutually exclusive.
type DiscountKind string

const (
	KindCoupon   DiscountKind = "coupon"
	KindVoucher  DiscountKind = "voucher"
	KindGiftCard DiscountKind = "gift_card"
)

func (k DiscountKind) String() string {
	return string(k)
}

func (k DiscountKind) IsValid() bool {
	switch k {
	case KindCoupon, KindVoucher, KindGiftCard:
		return true
	default:
		return false
	}
}

func NewDiscountKind(s string) (DiscountKind, error) {
	k := DiscountKind(s)
	if !k.IsValid() {
		return "", ErrInvalidDiscountKind
	}
	return k, nil
}
