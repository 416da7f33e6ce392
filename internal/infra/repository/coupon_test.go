//go:build unit

package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithinWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name string
		from *time.Time
		to   *time.Time
		want bool
	}{
		{name: "no bounds", from: nil, to: nil, want: true},
		{name: "inside both bounds", from: &before, to: &after, want: true},
		{name: "not yet valid", from: &after, to: nil, want: false},
		{name: "already expired", from: nil, to: &before, want: false},
		{name: "boundary instants are inclusive", from: &now, to: &now, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withinWindow(now, tt.from, tt.to))
		})
	}
}

func TestCouponAmount(t *testing.T) {
	amountOff := int64(2000)
	bigAmountOff := int64(99999)
	percentOff := 10.0

	t.Run("flat amount", func(t *testing.T) {
		assert.Equal(t, int64(2000), couponAmount(50000, &amountOff, nil))
	})
	t.Run("flat amount capped at the subtotal", func(t *testing.T) {
		assert.Equal(t, int64(1500), couponAmount(1500, &bigAmountOff, nil))
	})
	t.Run("percentage is rounded", func(t *testing.T) {
		assert.Equal(t, int64(5200), couponAmount(52000, nil, &percentOff))
	})
	t.Run("no rule yields nothing", func(t *testing.T) {
		assert.Equal(t, int64(0), couponAmount(52000, nil, nil))
	})
}
