package shared

import (
	"time"

	"github.com/google/uuid"
)

// Write-side snapshots prevent dependency on Read-side query types (CQRS separation)

type VariantSnapshot struct {
	VariantID    uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	ProductImage string
	SKU          string
	Karat        string
	StoneType    string
	Price        int64
	Stock        int32
	GrossWeight  float64
	IsAvailable  bool
}

type UserSnapshot struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
}

// DiscountValidation is what a discount collaborator reports for a code it
// recognises: the row it resolved to and the amount redeemable against the
// given subtotal.
type DiscountValidation struct {
	ReferenceID uuid.UUID
	Code        string
	Amount      int64
}
