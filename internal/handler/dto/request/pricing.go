package request

import (
	"aurum-commerce/internal/usecase/queries"
)

type QuoteRequest struct {
	GoldWeightGrams float64 `json:"gold_weight_grams" binding:"required,gt=0"`
	StoneCarats     float64 `json:"stone_carats" binding:"min=0"`
	Karat           string  `json:"karat" binding:"required,oneof=14 18 22 24"`
	StoneType       string  `json:"stone_type" binding:"required,oneof=none diamond gemstone"`
	ChainAddon      bool    `json:"chain_addon"`
}

func (r QuoteRequest) ToQuery() queries.QuoteRequest {
	return queries.QuoteRequest{
		GoldWeightGrams: r.GoldWeightGrams,
		StoneCarats:     r.StoneCarats,
		Karat:           r.Karat,
		StoneType:       r.StoneType,
		ChainAddon:      r.ChainAddon,
	}
}
