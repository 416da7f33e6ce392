package catalog

import "errors"

var (
	ErrInvalidKarat     = errors.New("invalid karat")
	ErrInvalidStoneType = errors.New("invalid stone type")
	ErrInvalidSKU       = errors.New("invalid sku")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

// Karat is the gold purity grade of a variant.
type Karat string

const (
	Karat14 Karat = "14"
	Karat18 Karat = "18"
	Karat22 Karat = "22"
	Karat24 Karat = "24"
)

func (k Karat) String() string {
	return string(k)
}

func (k Karat) IsValid() bool {
	switch k {
	case Karat14, Karat18, Karat22, Karat24:
		return true
	default:
		return false
	}
}

func NewKarat(s string) (Karat, error) {
	k := Karat(s)
	if !k.IsValid() {
		return "", ErrInvalidKarat
	}
	return k, nil
}

type StoneType string

const (
	StoneNone     StoneType = "none"
	StoneDiamond  StoneType = "diamond"
	StoneGemstone StoneType = "gemstone"
)

func (s StoneType) String() string {
	return string(s)
}

func (s StoneType) IsValid() bool {
	switch s {
	case StoneNone, StoneDiamond, StoneGemstone:
		return true
	default:
		return false
	}
}

func NewStoneType(s string) (StoneType, error) {
	st := StoneType(s)
	if !st.IsValid() {
		return "", ErrInvalidStoneType
	}
	return st, nil
}
