//go:build unit

package order_test

import (
	"testing"
	"time"

	"aurum-commerce/internal/domain/order"
	"aurum-commerce/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusGraph(t *testing.T) {
	cases := []struct {
		from    order.Status
		to      order.Status
		allowed bool
	}{
		{order.StatusPending, order.StatusProcessing, true},
		{order.StatusPending, order.StatusCancelled, true},
		{order.StatusPending, order.StatusFailed, true},
		{order.StatusPending, order.StatusShipped, false},
		{order.StatusPending, order.StatusDelivered, false},
		{order.StatusProcessing, order.StatusShipped, true},
		{order.StatusProcessing, order.StatusCancelled, true},
		{order.StatusProcessing, order.StatusDelivered, false},
		{order.StatusShipped, order.StatusDelivered, true},
		{order.StatusShipped, order.StatusCancelled, true},
		{order.StatusDelivered, order.StatusReturned, true},
		{order.StatusDelivered, order.StatusProcessing, false},
		{order.StatusFailed, order.StatusPending, true},
		{order.StatusFailed, order.StatusProcessing, false},
		{order.StatusCancelled, order.StatusPending, false},
		{order.StatusCancelled, order.StatusProcessing, false},
		{order.StatusCancelled, order.StatusReturned, false},
		{order.StatusReturned, order.StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatusProperties(t *testing.T) {
	assert.True(t, order.StatusCancelled.IsTerminal())
	assert.True(t, order.StatusReturned.IsTerminal())
	assert.False(t, order.StatusFailed.IsTerminal())

	assert.True(t, order.StatusCancelled.ReleasesStock())
	assert.True(t, order.StatusReturned.ReleasesStock())
	assert.False(t, order.StatusDelivered.ReleasesStock())
	assert.False(t, order.StatusFailed.ReleasesStock())

	assert.True(t, order.StatusPending.IsCancellable())
	assert.True(t, order.StatusProcessing.IsCancellable())
	assert.False(t, order.StatusShipped.IsCancellable())

	assert.True(t, order.StatusDelivered.IsReturnable())
	assert.False(t, order.StatusShipped.IsReturnable())
}

func TestTransitionSideEffects(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	eta := 168 * time.Hour

	t.Run("processing stamps an ETA", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.TransitionTo(order.StatusProcessing, now, eta))
		require.NotNil(t, o.EstimatedETA())
		assert.Equal(t, now.Add(eta), *o.EstimatedETA())
	})

	t.Run("shipped generates a tracking number once", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildInStatus(order.StatusProcessing)
		require.NoError(t, err)

		require.NoError(t, o.TransitionTo(order.StatusShipped, now, eta))
		require.NotNil(t, o.TrackingNumber())
		assert.NotEmpty(t, *o.TrackingNumber())
	})

	t.Run("delivered and returned stamp timestamps", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildInStatus(order.StatusShipped)
		require.NoError(t, err)

		require.NoError(t, o.TransitionTo(order.StatusDelivered, now, eta))
		require.NotNil(t, o.DeliveredAt())

		require.NoError(t, o.Return(now))
		require.NotNil(t, o.ReturnedAt())
		assert.Equal(t, order.StatusReturned, o.Status())
	})

	t.Run("invalid transition is rejected", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildInStatus(order.StatusDelivered)
		require.NoError(t, err)

		err = o.TransitionTo(order.StatusProcessing, now, eta)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Equal(t, order.StatusDelivered, o.Status())
	})

	t.Run("cancel from shipped is refused via Cancel", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildInStatus(order.StatusShipped)
		require.NoError(t, err)

		err = o.Cancel(now)
		assert.ErrorIs(t, err, order.ErrNotCancellable)
	})

	t.Run("return only from delivered", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildInStatus(order.StatusProcessing)
		require.NoError(t, err)

		err = o.Return(now)
		assert.ErrorIs(t, err, order.ErrNotReturnable)
	})
}

func TestNewOrderValidation(t *testing.T) {
	t.Run("requires items", func(t *testing.T) {
		_, err := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
			b.Items = nil
		}).BuildDomain()
		assert.ErrorIs(t, err, order.ErrNoItems)
	})

	t.Run("rejects negative totals", func(t *testing.T) {
		_, err := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
			b.Total = -1
		}).BuildDomain()
		assert.ErrorIs(t, err, order.ErrNegativeAmounts)
	})

	t.Run("validates addresses", func(t *testing.T) {
		_, err := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
			b.Shipping.City = ""
		}).BuildDomain()
		assert.Error(t, err)
	})
}
