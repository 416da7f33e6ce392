package queries

import (
	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/domain/pricing"
	"aurum-commerce/internal/pkg/config"
)

type QuoteRequest struct {
	GoldWeightGrams float64
	StoneCarats     float64
	Karat           string
	StoneType       string
	ChainAddon      bool
}

type QuoteView struct {
	Price       int64   `json:"price"`
	GrossWeight float64 `json:"gross_weight"`
}

type PricingQueries interface {
	// Quote prices a hypothetical variant against the current rate table.
	// Pure computation; no catalog row is touched.
	Quote(req QuoteRequest) (*QuoteView, error)
}

type pricingQueriesImpl struct {
	rates pricing.RateSnapshot
}

func NewPricingQueries(cfg config.PricingConfig) PricingQueries {
	return &pricingQueriesImpl{rates: RateSnapshotFromConfig(cfg)}
}

func (q *pricingQueriesImpl) Quote(req QuoteRequest) (*QuoteView, error) {
	karat, err := catalog.NewKarat(req.Karat)
	if err != nil {
		return nil, err
	}
	stone, err := catalog.NewStoneType(req.StoneType)
	if err != nil {
		return nil, err
	}

	price, err := pricing.ComputeVariantPrice(
		pricing.WeightInputs{GoldWeightGrams: req.GoldWeightGrams, StoneCarats: req.StoneCarats},
		karat,
		stone,
		req.ChainAddon,
		q.rates,
	)
	if err != nil {
		return nil, err
	}
	return &QuoteView{Price: price.Price, GrossWeight: price.GrossWeight}, nil
}

// RateSnapshotFromConfig freezes the configured rate table. Config reloads
// produce a new snapshot; in-flight pricing keeps the one it started with.
func RateSnapshotFromConfig(cfg config.PricingConfig) pricing.RateSnapshot {
	goldRates := make(map[catalog.Karat]int64, len(cfg.GoldRates))
	for k, v := range cfg.GoldRates {
		karat, err := catalog.NewKarat(k)
		if err != nil {
			continue
		}
		goldRates[karat] = v
	}

	return pricing.NewRateSnapshot(
		goldRates,
		cfg.DiamondTierCarat,
		cfg.DiamondRateBelowTier,
		cfg.DiamondRateAboveTier,
		cfg.GemstoneRatePerCarat,
		cfg.MakingChargePerGram,
		cfg.CertificationFee,
		cfg.ChainAddonPrice,
		cfg.TaxPercent,
	)
}
