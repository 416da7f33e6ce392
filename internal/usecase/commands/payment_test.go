//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"aurum-commerce/internal/domain/order"
	"aurum-commerce/internal/domain/payment"
	"aurum-commerce/internal/domain/user"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/pkg/clock"
	"aurum-commerce/internal/pkg/config"
	"aurum-commerce/internal/usecase/commands"
	"aurum-commerce/internal/usecase/shared"
	"aurum-commerce/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentRepo struct {
	stored  *payment.Payment
	refunds []payment.Refund
}

func (r *fakePaymentRepo) Create(_ context.Context, _ db.DBTX, p *payment.Payment) error {
	r.stored = p
	return nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*payment.Payment, error) {
	if r.stored != nil && r.stored.ID() == id {
		return r.stored, nil
	}
	return nil, infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
}

func (r *fakePaymentRepo) FindByOrderID(_ context.Context, _ db.DBTX, orderID uuid.UUID) (*payment.Payment, error) {
	if r.stored != nil && r.stored.OrderID() == orderID {
		return r.stored, nil
	}
	return nil, infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
}

func (r *fakePaymentRepo) FindByGatewayOrderID(_ context.Context, _ db.DBTX, gatewayOrderID string) (*payment.Payment, error) {
	if r.stored != nil && r.stored.GatewayOrderID() != nil && *r.stored.GatewayOrderID() == gatewayOrderID {
		return r.stored, nil
	}
	return nil, infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
}

func (r *fakePaymentRepo) Update(_ context.Context, _ db.DBTX, p *payment.Payment) error {
	r.stored = p
	return nil
}

func (r *fakePaymentRepo) AddRefund(_ context.Context, _ db.DBTX, _ uuid.UUID, ref payment.Refund) error {
	r.refunds = append(r.refunds, ref)
	return nil
}

func (r *fakePaymentRepo) UpdateRefund(_ context.Context, _ db.DBTX, _ uuid.UUID, ref payment.Refund) error {
	for i := range r.refunds {
		if r.refunds[i].ID == ref.ID {
			r.refunds[i] = ref
		}
	}
	return nil
}

type fakeGateway struct {
	createdOrderID   string
	createOrderErr   error
	fetched          *shared.GatewayPayment
	fetchErr         error
	refundID         string
	refundErr        error
	paymentSigValid  bool
	webhookSigValid  bool
	refundCalls      int
}

func (g *fakeGateway) CreateOrder(context.Context, string, int64, string, map[string]string) (string, error) {
	if g.createOrderErr != nil {
		return "", g.createOrderErr
	}
	return g.createdOrderID, nil
}

func (g *fakeGateway) FetchPayment(context.Context, string) (*shared.GatewayPayment, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return g.fetched, nil
}

func (g *fakeGateway) Refund(context.Context, string, int64, map[string]string) (string, error) {
	g.refundCalls++
	if g.refundErr != nil {
		return "", g.refundErr
	}
	return g.refundID, nil
}

func (g *fakeGateway) VerifyPaymentSignature(_, _, _ string) bool { return g.paymentSigValid }
func (g *fakeGateway) VerifyWebhookSignature(_ []byte, _ string) bool {
	return g.webhookSigValid
}

type paymentEnv struct {
	uc      commands.PaymentCommands
	tx      *fakeTx
	gw      *fakeGateway
	now     time.Time
	userID  uuid.UUID
	staffID uuid.UUID
}

func newPaymentEnv(t *testing.T, codPolicy string) *paymentEnv {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tx := &fakeTx{
		carts:         &fakeCartRepo{},
		orders:        &fakeOrderRepo{},
		payments:      &fakePaymentRepo{},
		stock:         &fakeStockLedger{},
		consumers:     &fakeDiscountConsumer{},
		notifications: &fakeNotificationRepo{},
		reads:         &fakeReads{},
	}
	gw := &fakeGateway{createdOrderID: "order_g1", refundID: "rfnd_1", paymentSigValid: true, webhookSigValid: true}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := commands.NewPaymentUseCase(&fakeUoW{tx: tx}, gw, clock.NewMockClock(now),
		config.GatewayConfig{Currency: "INR"},
		config.CheckoutConfig{DeliveryETA: 168 * time.Hour, CODAmountPolicy: codPolicy},
		logger,
	)
	return &paymentEnv{uc: uc, tx: tx, gw: gw, now: now, userID: uuid.New(), staffID: uuid.New()}
}

// seedOrder stores a pending order owned by env.userID and returns it.
func (env *paymentEnv) seedOrder(t *testing.T, method order.PaymentMethod) *order.Order {
	t.Helper()
	o, err := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
		b.UserID = env.userID
		b.Method = method
	}).BuildDomain()
	require.NoError(t, err)
	env.tx.orders.stored = o
	return o
}

func (env *paymentEnv) seedPayment(t *testing.T, o *order.Order) *payment.Payment {
	t.Helper()
	p, err := builder.NewPaymentBuilder().With(func(b *builder.PaymentBuilder) {
		b.OrderID = o.ID()
		b.UserID = o.UserID()
		b.Amount = o.Total()
		b.Method = o.PaymentMethod()
	}).BuildDomain()
	require.NoError(t, err)
	env.tx.payments.stored = p
	return p
}

func TestInitiatePayment(t *testing.T) {
	t.Run("registers a gateway order for a pending order", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)

		result, err := env.uc.InitiatePayment(context.Background(), env.userID, o.ID())

		require.NoError(t, err)
		assert.Equal(t, "order_g1", result.GatewayOrderID)
		assert.Equal(t, o.Total()*100, result.AmountMinorUnits)
		assert.Equal(t, "INR", result.Currency)
		require.NotNil(t, env.tx.payments.stored)
		assert.Equal(t, "order_g1", *env.tx.payments.stored.GatewayOrderID())
	})

	t.Run("reuses an existing uncaptured record", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)
		existing := env.seedPayment(t, o)
		env.gw.createdOrderID = "order_g2"

		result, err := env.uc.InitiatePayment(context.Background(), env.userID, o.ID())

		require.NoError(t, err)
		assert.Equal(t, existing.ID(), result.PaymentID)
		assert.Equal(t, "order_g2", *env.tx.payments.stored.GatewayOrderID())
	})

	t.Run("cod initiation sends the order out for delivery", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodCashOnDelivery)

		result, err := env.uc.InitiatePayment(context.Background(), env.userID, o.ID())

		require.NoError(t, err)
		assert.Empty(t, result.GatewayOrderID)
		assert.Equal(t, "cod", result.Method)
		require.NotNil(t, env.tx.payments.stored)
		assert.False(t, env.tx.payments.stored.IsCaptured())
		assert.Equal(t, order.StatusProcessing, o.Status())
		assert.Equal(t, []order.Status{order.StatusProcessing}, env.tx.orders.statusUpdates)
		// collection at the door, not yet a captured notification
		assert.Empty(t, env.tx.notifications.jobs)
	})

	t.Run("rejects a captured order", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)
		p := env.seedPayment(t, o)
		require.NoError(t, p.Capture(nil, env.now))

		_, err := env.uc.InitiatePayment(context.Background(), env.userID, o.ID())
		assert.ErrorIs(t, err, commands.ErrOrderAlreadyPaid)
	})

	t.Run("rejects another user's order", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)

		_, err := env.uc.InitiatePayment(context.Background(), uuid.New(), o.ID())
		assert.ErrorIs(t, err, commands.ErrOrderNotOwned)
	})

	t.Run("rejects a non-pending order", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o, err := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
			b.UserID = env.userID
		}).BuildInStatus(order.StatusProcessing)
		require.NoError(t, err)
		env.tx.orders.stored = o

		_, err = env.uc.InitiatePayment(context.Background(), env.userID, o.ID())
		assert.ErrorIs(t, err, commands.ErrOrderNotPayable)
	})

	t.Run("wraps gateway outages", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)
		env.gw.createOrderErr = infra.WrapRepoErr("connect timeout", nil, infra.KindDBFailure)

		_, err := env.uc.InitiatePayment(context.Background(), env.userID, o.ID())
		assert.ErrorIs(t, err, commands.ErrGatewayFailure)
	})
}

func TestHandleWebhook(t *testing.T) {
	captured := func(env *paymentEnv, o *order.Order) {
		env.gw.fetched = &shared.GatewayPayment{
			GatewayPaymentID: "pay_xyz",
			GatewayOrderID:   "order_g1",
			Status:           "captured",
			AmountMinorUnits: o.Total() * 100,
			Currency:         "INR",
		}
	}
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_xyz","order_id":"order_g1","status":"captured"}}}}`)

	t.Run("captures the payment and advances the order", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)
		p := env.seedPayment(t, o)
		require.NoError(t, p.AttachGatewayOrder("order_g1", env.now))
		captured(env, o)

		require.NoError(t, env.uc.HandleWebhook(context.Background(), body, "sig"))

		assert.True(t, env.tx.payments.stored.IsCaptured())
		assert.Equal(t, order.StatusProcessing, o.Status())
		assert.Equal(t, []order.Status{order.StatusProcessing}, env.tx.orders.statusUpdates)
		assert.Equal(t, []string{"payment.captured"}, env.tx.notifications.jobs)
	})

	t.Run("redelivery is a no-op", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)
		p := env.seedPayment(t, o)
		require.NoError(t, p.AttachGatewayOrder("order_g1", env.now))
		captured(env, o)

		require.NoError(t, env.uc.HandleWebhook(context.Background(), body, "sig"))
		require.NoError(t, env.uc.HandleWebhook(context.Background(), body, "sig"))

		// the order advanced exactly once
		assert.Equal(t, []order.Status{order.StatusProcessing}, env.tx.orders.statusUpdates)
	})

	t.Run("rejects an invalid signature", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		env.gw.webhookSigValid = false

		err := env.uc.HandleWebhook(context.Background(), body, "forged")
		assert.ErrorIs(t, err, commands.ErrInvalidSignature)
	})

	t.Run("rejects an amount mismatch", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)
		p := env.seedPayment(t, o)
		require.NoError(t, p.AttachGatewayOrder("order_g1", env.now))
		captured(env, o)
		env.gw.fetched.AmountMinorUnits = 1

		err := env.uc.HandleWebhook(context.Background(), body, "sig")
		assert.ErrorIs(t, err, commands.ErrAmountMismatch)
		assert.False(t, env.tx.payments.stored.IsCaptured())
	})

	t.Run("ignores unhandled events", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		err := env.uc.HandleWebhook(context.Background(), []byte(`{"event":"order.paid"}`), "sig")
		assert.ErrorIs(t, err, commands.ErrUnknownWebhookEvent)
	})

	t.Run("payment.failed fails the record and the pending order", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)
		p := env.seedPayment(t, o)
		require.NoError(t, p.AttachGatewayOrder("order_g1", env.now))

		failBody := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_xyz","order_id":"order_g1","error_description":"card declined"}}}}`)
		require.NoError(t, env.uc.HandleWebhook(context.Background(), failBody, "sig"))

		assert.Equal(t, payment.StatusFailed, env.tx.payments.stored.Status())
		assert.Equal(t, order.StatusFailed, o.Status())
	})
}

func TestConfirmCODPayment(t *testing.T) {
	t.Run("captures on exact collection", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodCashOnDelivery)
		env.seedPayment(t, o)

		err := env.uc.ConfirmCODPayment(context.Background(), env.staffID, user.RoleStaff, o.ID(), o.Total())

		require.NoError(t, err)
		assert.True(t, env.tx.payments.stored.IsCaptured())
		assert.Equal(t, order.StatusProcessing, o.Status())
	})

	t.Run("strict policy blocks a mismatched amount", func(t *testing.T) {
		env := newPaymentEnv(t, "strict")
		o := env.seedOrder(t, order.MethodCashOnDelivery)
		env.seedPayment(t, o)

		err := env.uc.ConfirmCODPayment(context.Background(), env.staffID, user.RoleStaff, o.ID(), o.Total()-500)

		assert.ErrorIs(t, err, commands.ErrCODAmountMismatch)
		assert.False(t, env.tx.payments.stored.IsCaptured())
	})

	t.Run("tolerant policy captures a mismatched amount", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodCashOnDelivery)
		env.seedPayment(t, o)

		err := env.uc.ConfirmCODPayment(context.Background(), env.staffID, user.RoleStaff, o.ID(), o.Total()-500)

		require.NoError(t, err)
		assert.True(t, env.tx.payments.stored.IsCaptured())
	})

	t.Run("rejects a gateway order", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodGateway)
		env.seedPayment(t, o)

		err := env.uc.ConfirmCODPayment(context.Background(), env.staffID, user.RoleStaff, o.ID(), o.Total())
		assert.ErrorIs(t, err, commands.ErrNotCODOrder)
	})

	t.Run("customers cannot confirm collection", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := env.seedOrder(t, order.MethodCashOnDelivery)
		env.seedPayment(t, o)

		err := env.uc.ConfirmCODPayment(context.Background(), env.userID, user.RoleCustomer, o.ID(), o.Total())
		assert.ErrorIs(t, err, commands.ErrForbiddenForRole)
	})
}

func TestRefundFlow(t *testing.T) {
	setupCaptured := func(t *testing.T, env *paymentEnv) *order.Order {
		t.Helper()
		o := env.seedOrder(t, order.MethodGateway)
		p := env.seedPayment(t, o)
		require.NoError(t, p.AttachGatewayOrder("order_g1", env.now))
		pid := "pay_xyz"
		require.NoError(t, p.Capture(&pid, env.now))
		return o
	}

	t.Run("initiate then process through the gateway", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := setupCaptured(t, env)

		initiated, err := env.uc.InitiateRefund(context.Background(), env.staffID, user.RoleStaff, o.ID(), 10000, "partial return")
		require.NoError(t, err)
		assert.Equal(t, payment.RefundPending.String(), initiated.Status)

		processed, err := env.uc.ProcessRefund(context.Background(), env.staffID, user.RoleStaff, o.ID(), initiated.RefundID)
		require.NoError(t, err)
		assert.Equal(t, payment.RefundProcessed.String(), processed.Status)
		assert.Equal(t, 1, env.gw.refundCalls)
	})

	t.Run("a gateway failure settles the refund as failed", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := setupCaptured(t, env)
		env.gw.refundErr = infra.WrapRepoErr("gateway down", nil, infra.KindDBFailure)

		initiated, err := env.uc.InitiateRefund(context.Background(), env.staffID, user.RoleStaff, o.ID(), 10000, "partial return")
		require.NoError(t, err)

		processed, err := env.uc.ProcessRefund(context.Background(), env.staffID, user.RoleStaff, o.ID(), initiated.RefundID)
		require.NoError(t, err)
		assert.Equal(t, payment.RefundFailed.String(), processed.Status)
	})

	t.Run("processing twice is rejected", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := setupCaptured(t, env)

		initiated, err := env.uc.InitiateRefund(context.Background(), env.staffID, user.RoleStaff, o.ID(), 10000, "partial return")
		require.NoError(t, err)

		_, err = env.uc.ProcessRefund(context.Background(), env.staffID, user.RoleStaff, o.ID(), initiated.RefundID)
		require.NoError(t, err)
		_, err = env.uc.ProcessRefund(context.Background(), env.staffID, user.RoleStaff, o.ID(), initiated.RefundID)
		assert.ErrorIs(t, err, payment.ErrRefundNotPending)
	})

	t.Run("refund requires staff", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := setupCaptured(t, env)

		_, err := env.uc.InitiateRefund(context.Background(), env.userID, user.RoleCustomer, o.ID(), 10000, "nope")
		assert.ErrorIs(t, err, commands.ErrForbiddenForRole)
	})

	t.Run("refund beyond the captured amount", func(t *testing.T) {
		env := newPaymentEnv(t, "tolerant")
		o := setupCaptured(t, env)

		_, err := env.uc.InitiateRefund(context.Background(), env.staffID, user.RoleStaff, o.ID(), o.Total()+1, "too much")
		assert.ErrorIs(t, err, payment.ErrRefundExceedsAmount)
	})
}
