//go:build unit

package payment_test

import (
	"testing"
	"time"

	"aurum-commerce/internal/domain/payment"
	"aurum-commerce/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestPaymentCapture(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("capture happens at most once", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, p.Capture(ptr("pay_abc123"), now))
		assert.Equal(t, payment.StatusCaptured, p.Status())
		require.NotNil(t, p.CapturedAt())

		// redelivered confirmation short-circuits
		err = p.Capture(ptr("pay_abc123"), now.Add(time.Minute))
		assert.ErrorIs(t, err, payment.ErrAlreadyCaptured)
		assert.Equal(t, now, *p.CapturedAt())
	})

	t.Run("fail after capture is rejected", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildCaptured("pay_abc123")
		require.NoError(t, err)

		err = p.Fail("signature mismatch", now)
		assert.ErrorIs(t, err, payment.ErrAlreadyCaptured)
		assert.Equal(t, payment.StatusCaptured, p.Status())
	})

	t.Run("capture after failure recovers the record", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, p.Fail("card declined", now))
		assert.Equal(t, payment.StatusFailed, p.Status())

		require.NoError(t, p.Capture(ptr("pay_retry1"), now.Add(time.Hour)))
		assert.Equal(t, payment.StatusCaptured, p.Status())
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		_, err := builder.NewPaymentBuilder().With(func(b *builder.PaymentBuilder) {
			b.Amount = 0
		}).BuildDomain()
		assert.ErrorIs(t, err, payment.ErrInvalidAmount)
	})
}

func TestAttachGatewayOrder(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("re-initiation overwrites the token and clears failure", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, p.AttachGatewayOrder("order_g1", now))
		require.NoError(t, p.Fail("abandoned", now))

		require.NoError(t, p.AttachGatewayOrder("order_g2", now.Add(time.Hour)))
		require.NotNil(t, p.GatewayOrderID())
		assert.Equal(t, "order_g2", *p.GatewayOrderID())
		assert.Equal(t, payment.StatusCreated, p.Status())
		assert.Nil(t, p.FailureReason())
	})

	t.Run("captured payments are immutable", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildCaptured("pay_abc123")
		require.NoError(t, err)

		err = p.AttachGatewayOrder("order_g3", now)
		assert.ErrorIs(t, err, payment.ErrAlreadyCaptured)
	})
}

func TestAmountMinorUnits(t *testing.T) {
	p, err := builder.NewPaymentBuilder().With(func(b *builder.PaymentBuilder) {
		b.Amount = 52000
	}).BuildDomain()
	require.NoError(t, err)
	assert.Equal(t, int64(5200000), p.AmountMinorUnits())
}

func TestRefunds(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("only captured payments are refundable", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildDomain()
		require.NoError(t, err)

		_, err = p.InitiateRefund(1000, "damaged item", now)
		assert.ErrorIs(t, err, payment.ErrNotCaptured)
	})

	t.Run("refunds are bounded by the captured amount", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildCaptured("pay_abc123")
		require.NoError(t, err)

		_, err = p.InitiateRefund(30000, "partial return", now)
		require.NoError(t, err)
		assert.Equal(t, int64(30000), p.RefundedAmount())

		_, err = p.InitiateRefund(30000, "second partial", now)
		assert.ErrorIs(t, err, payment.ErrRefundExceedsAmount)

		_, err = p.InitiateRefund(22000, "remainder", now)
		assert.NoError(t, err)
	})

	t.Run("a failed refund frees its amount", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildCaptured("pay_abc123")
		require.NoError(t, err)

		r, err := p.InitiateRefund(52000, "full refund", now)
		require.NoError(t, err)

		require.NoError(t, p.SettleRefund(r.ID, payment.RefundFailed, nil, now))
		assert.Equal(t, int64(0), p.RefundedAmount())

		_, err = p.InitiateRefund(52000, "retry", now)
		assert.NoError(t, err)
	})

	t.Run("settle requires a pending refund", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildCaptured("pay_abc123")
		require.NoError(t, err)

		r, err := p.InitiateRefund(1000, "goodwill", now)
		require.NoError(t, err)

		require.NoError(t, p.SettleRefund(r.ID, payment.RefundProcessed, ptr("rfnd_1"), now))
		err = p.SettleRefund(r.ID, payment.RefundProcessed, ptr("rfnd_1"), now)
		assert.ErrorIs(t, err, payment.ErrRefundNotPending)
	})

	t.Run("settle rejects a non-terminal target status", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildCaptured("pay_abc123")
		require.NoError(t, err)

		r, err := p.InitiateRefund(1000, "goodwill", now)
		require.NoError(t, err)

		err = p.SettleRefund(r.ID, payment.RefundPending, nil, now)
		assert.ErrorIs(t, err, payment.ErrRefundNotPending)
	})

	t.Run("settle unknown refund", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildCaptured("pay_abc123")
		require.NoError(t, err)

		err = p.SettleRefund(uuid.New(), payment.RefundProcessed, nil, now)
		assert.ErrorIs(t, err, payment.ErrRefundNotFound)
	})

	t.Run("non-positive refund amount", func(t *testing.T) {
		p, err := builder.NewPaymentBuilder().BuildCaptured("pay_abc123")
		require.NoError(t, err)

		_, err = p.InitiateRefund(0, "nothing", now)
		assert.ErrorIs(t, err, payment.ErrInvalidAmount)
	})
}
