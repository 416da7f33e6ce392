//go:build unit

package pricing_test

import (
	"testing"

	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/domain/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRates() pricing.RateSnapshot {
	return pricing.NewRateSnapshot(
		map[catalog.Karat]int64{
			catalog.Karat14: 4100,
			catalog.Karat18: 5300,
			catalog.Karat22: 6400,
			catalog.Karat24: 7000,
		},
		0.5,   // diamond tier carat
		45000, // below tier
		72000, // above tier
		12000, // gemstone rate
		550,   // making charge per gram
		1200,  // certification fee
		3500,  // chain addon
		3,     // tax percent
	)
}

func TestComputeVariantPrice(t *testing.T) {
	rates := testRates()

	t.Run("plain gold piece", func(t *testing.T) {
		got, err := pricing.ComputeVariantPrice(
			pricing.WeightInputs{GoldWeightGrams: 10},
			catalog.Karat22, catalog.StoneNone, false, rates,
		)
		require.NoError(t, err)

		// (10*6400 + 10*550 + 1200) * 1.03
		assert.Equal(t, int64(72821), got.Price)
		assert.InDelta(t, 10.0, got.GrossWeight, 1e-9)
	})

	t.Run("diamond below tier uses the lower rate", func(t *testing.T) {
		got, err := pricing.ComputeVariantPrice(
			pricing.WeightInputs{GoldWeightGrams: 4, StoneCarats: 0.3},
			catalog.Karat18, catalog.StoneDiamond, false, rates,
		)
		require.NoError(t, err)

		// (4*5300 + 0.3*45000 + 4*550 + 1200) * 1.03
		assert.Equal(t, int64(39243), got.Price)
	})

	t.Run("diamond at tier boundary uses the higher rate", func(t *testing.T) {
		below, err := pricing.ComputeVariantPrice(
			pricing.WeightInputs{GoldWeightGrams: 4, StoneCarats: 0.49},
			catalog.Karat18, catalog.StoneDiamond, false, rates,
		)
		require.NoError(t, err)
		at, err := pricing.ComputeVariantPrice(
			pricing.WeightInputs{GoldWeightGrams: 4, StoneCarats: 0.5},
			catalog.Karat18, catalog.StoneDiamond, false, rates,
		)
		require.NoError(t, err)

		// 0.5ct at 72000 costs more than 0.49ct at 45000
		assert.Greater(t, at.Price, below.Price)
	})

	t.Run("chain addon is a flat pre-tax amount", func(t *testing.T) {
		without, err := pricing.ComputeVariantPrice(
			pricing.WeightInputs{GoldWeightGrams: 10},
			catalog.Karat22, catalog.StoneNone, false, rates,
		)
		require.NoError(t, err)
		with, err := pricing.ComputeVariantPrice(
			pricing.WeightInputs{GoldWeightGrams: 10},
			catalog.Karat22, catalog.StoneNone, true, rates,
		)
		require.NoError(t, err)

		// 3500 * 1.03, rounded
		assert.Equal(t, int64(3605), with.Price-without.Price)
	})

	t.Run("gross weight counts stones at 0.2g per carat", func(t *testing.T) {
		got, err := pricing.ComputeVariantPrice(
			pricing.WeightInputs{GoldWeightGrams: 5, StoneCarats: 1.5},
			catalog.Karat18, catalog.StoneGemstone, false, rates,
		)
		require.NoError(t, err)
		assert.InDelta(t, 5.3, got.GrossWeight, 1e-9)
	})

	t.Run("determinism", func(t *testing.T) {
		in := pricing.WeightInputs{GoldWeightGrams: 7.25, StoneCarats: 0.85}
		first, err := pricing.ComputeVariantPrice(in, catalog.Karat14, catalog.StoneDiamond, true, rates)
		require.NoError(t, err)
		for range 10 {
			again, err := pricing.ComputeVariantPrice(in, catalog.Karat14, catalog.StoneDiamond, true, rates)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("negative weights rejected", func(t *testing.T) {
		_, err := pricing.ComputeVariantPrice(
			pricing.WeightInputs{GoldWeightGrams: -1},
			catalog.Karat18, catalog.StoneNone, false, rates,
		)
		assert.ErrorIs(t, err, pricing.ErrInvalidWeights)
	})

	t.Run("unknown karat rate rejected", func(t *testing.T) {
		empty := pricing.NewRateSnapshot(nil, 0.5, 0, 0, 0, 0, 0, 0, 0)
		_, err := pricing.ComputeVariantPrice(
			pricing.WeightInputs{GoldWeightGrams: 1},
			catalog.Karat18, catalog.StoneNone, false, empty,
		)
		assert.ErrorIs(t, err, pricing.ErrUnknownKaratRate)
	})
}
