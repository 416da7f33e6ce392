package pricing

import (
	"math"

	"aurum-commerce/internal/domain/catalog"
)

const gramsPerCarat = 0.2

// WeightInputs carries the physical measurements a variant is priced from.
type WeightInputs struct {
	GoldWeightGrams float64
	StoneCarats     float64
}

type VariantPrice struct {
	Price       int64
	GrossWeight float64
}

// ComputeVariantPrice derives a variant's selling price from the rate
// snapshot: gold weight times the karat rate, stone cost by carat tier, a
// weight-proportional making charge, a flat certification fee, an optional
// chain addon, then tax. Pure; identical inputs always yield the same
// result, which price audits and re-pricing jobs rely on.
func ComputeVariantPrice(
	weights WeightInputs,
	karat catalog.Karat,
	stone catalog.StoneType,
	chainAddon bool,
	rates RateSnapshot,
) (VariantPrice, error) {
	if weights.GoldWeightGrams < 0 || weights.StoneCarats < 0 {
		return VariantPrice{}, ErrInvalidWeights
	}

	goldRate, err := rates.GoldRate(karat)
	if err != nil {
		return VariantPrice{}, err
	}

	goldCost := weights.GoldWeightGrams * float64(goldRate)
	stoneCost := weights.StoneCarats * float64(rates.stoneRate(stone, weights.StoneCarats))
	makingCharge := weights.GoldWeightGrams * float64(rates.makingChargePerGram)

	base := goldCost + stoneCost + makingCharge + float64(rates.certificationFee)
	if chainAddon {
		base += float64(rates.chainAddonPrice)
	}

	total := base * (1 + rates.taxPercent/100)

	return VariantPrice{
		Price:       int64(math.Round(total)),
		GrossWeight: weights.GoldWeightGrams + weights.StoneCarats*gramsPerCarat,
	}, nil
}
