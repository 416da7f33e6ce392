package pricing

import (
	"errors"

	"aurum-commerce/internal/domain/catalog"
)

var (
	ErrUnknownKaratRate = errors.New("no gold rate for karat")
	ErrInvalidWeights   = errors.New("weights must not be negative")
)

// RateSnapshot is the immutable rate table a single pricing call runs
// against. Callers take a snapshot once and pass it down; rate updates
// produce a new snapshot instead of mutating shared state.
type RateSnapshot struct {
	goldRatePerGram      map[catalog.Karat]int64
	diamondTierCarat     float64
	diamondRateBelowTier int64
	diamondRateAboveTier int64
	gemstoneRatePerCarat int64
	makingChargePerGram  int64
	certificationFee     int64
	chainAddonPrice      int64
	taxPercent           float64
}

func NewRateSnapshot(
	goldRatePerGram map[catalog.Karat]int64,
	diamondTierCarat float64,
	diamondRateBelowTier, diamondRateAboveTier, gemstoneRatePerCarat int64,
	makingChargePerGram, certificationFee, chainAddonPrice int64,
	taxPercent float64,
) RateSnapshot {
	rates := make(map[catalog.Karat]int64, len(goldRatePerGram))
	for k, v := range goldRatePerGram {
		rates[k] = v
	}
	return RateSnapshot{
		goldRatePerGram:      rates,
		diamondTierCarat:     diamondTierCarat,
		diamondRateBelowTier: diamondRateBelowTier,
		diamondRateAboveTier: diamondRateAboveTier,
		gemstoneRatePerCarat: gemstoneRatePerCarat,
		makingChargePerGram:  makingChargePerGram,
		certificationFee:     certificationFee,
		chainAddonPrice:      chainAddonPrice,
		taxPercent:           taxPercent,
	}
}

func (s RateSnapshot) GoldRate(k catalog.Karat) (int64, error) {
	rate, ok := s.goldRatePerGram[k]
	if !ok {
		return 0, ErrUnknownKaratRate
	}
	return rate, nil
}

func (s RateSnapshot) stoneRate(stone catalog.StoneType, carats float64) int64 {
	switch stone {
	case catalog.StoneDiamond:
		if carats >= s.diamondTierCarat {
			return s.diamondRateAboveTier
		}
		return s.diamondRateBelowTier
	case catalog.StoneGemstone:
		return s.gemstoneRatePerCarat
	default:
		return 0
	}
}
