package catalog

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNegativeStock = errors.New("stock cannot be negative")

// Variant is a specific karat/stone-type combination of a product with its
// own SKU, price and stock. Stock is mutated only through the stock ledger's
// conditional update, never through this entity.
type Variant struct {
	productID   uuid.UUID
	sku         SKU
	karat       Karat
	stoneType   StoneType
	price       int64
	stock       int32
	grossWeight float64
	isAvailable bool
}

func NewVariant(
	productID uuid.UUID,
	sku SKU,
	karat Karat,
	stoneType StoneType,
	price int64,
	stock int32,
	grossWeight float64,
	isAvailable bool,
) (*Variant, error) {
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	return &Variant{
		productID:   productID,
		sku:         sku,
		karat:       karat,
		stoneType:   stoneType,
		price:       price,
		stock:       stock,
		grossWeight: grossWeight,
		isAvailable: isAvailable,
	}, nil
}

func (v *Variant) ProductID() uuid.UUID { return v.productID }
func (v *Variant) SKU() SKU             { return v.sku }
func (v *Variant) Karat() Karat         { return v.karat }
func (v *Variant) StoneType() StoneType { return v.stoneType }
func (v *Variant) Price() int64         { return v.price }
func (v *Variant) Stock() int32         { return v.stock }
func (v *Variant) GrossWeight() float64 { return v.grossWeight }
func (v *Variant) IsAvailable() bool    { return v.isAvailable }

func (v *Variant) HasStock(quantity int32) bool {
	return v.isAvailable && v.stock >= quantity
}

// SKU identifies a sellable variant. NewSKU normalizes to uppercase.
type SKU string

func NewSKU(s string) (SKU, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || len(s) > 64 {
		return "", ErrInvalidSKU
	}
	return SKU(s), nil
}

func (s SKU) String() string {
	return string(s)
}

func (s SKU) IsZero() bool {
	return s == ""
}
