package cart

import (
	"time"

	"aurum-commerce/internal/domain/catalog"

	"github.com/google/uuid"
)

// LineItem is one priced variant selection in a cart. UnitPrice is the
// price captured when the line was added; live carts are always re-totaled
// from these lines.
type LineItem struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	SKU           catalog.SKU
	Karat         catalog.Karat
	StoneType     catalog.StoneType
	UnitPrice     int64
	Quantity      int32
	SelectedImage string
	AddedAt       time.Time
}

func NewLineItem(
	productID uuid.UUID,
	sku catalog.SKU,
	karat catalog.Karat,
	stoneType catalog.StoneType,
	unitPrice int64,
	quantity int32,
	selectedImage string,
	addedAt time.Time,
) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}
	return LineItem{
		ID:            uuid.New(),
		ProductID:     productID,
		SKU:           sku,
		Karat:         karat,
		StoneType:     stoneType,
		UnitPrice:     unitPrice,
		Quantity:      quantity,
		SelectedImage: selectedImage,
		AddedAt:       addedAt,
	}, nil
}

// AppliedDiscount is one occupied discount slot: the validated code, the
// row it refers to, and the amount its collaborator computed when it was
// applied.
type AppliedDiscount struct {
	Kind        DiscountKind
	Code        string
	ReferenceID uuid.UUID
	Amount      int64
	AppliedAt   time.Time
}

func NewAppliedDiscount(kind DiscountKind, code string, referenceID uuid.UUID, amount int64, appliedAt time.Time) (AppliedDiscount, error) {
	if !kind.IsValid() {
		return AppliedDiscount{}, ErrInvalidDiscountKind
	}
	if amount <= 0 {
		return AppliedDiscount{}, ErrInvalidDiscountValue
	}
	return AppliedDiscount{
		Kind:        kind,
		Code:        code,
		ReferenceID: referenceID,
		Amount:      amount,
		AppliedAt:   appliedAt,
	}, nil
}
