//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"aurum-commerce/internal/domain/cart"
	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/domain/order"
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

// --- hand-written fakes -----------------------------------------------------
//
// The checkout saga is about call ordering across transaction boundaries,
// which generated mocks express poorly; these fakes record the sequence of
// stock operations instead.

type fakeUoW struct {
	tx *fakeTx
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads { return u.tx.reads }

type fakeTx struct {
	carts         *fakeCartRepo
	orders        *fakeOrderRepo
	payments      *fakePaymentRepo
	stock         *fakeStockLedger
	consumers     *fakeDiscountConsumer
	notifications *fakeNotificationRepo
	reads         *fakeReads
}

func (t *fakeTx) Carts() shared.CartRepository                 { return t.carts }
func (t *fakeTx) Orders() shared.OrderRepository               { return t.orders }
func (t *fakeTx) Payments() shared.PaymentRepository           { return t.payments }
func (t *fakeTx) Stock() shared.StockLedger                    { return t.stock }
func (t *fakeTx) Coupons() shared.DiscountConsumer             { return t.consumers }
func (t *fakeTx) Vouchers() shared.DiscountConsumer            { return t.consumers }
func (t *fakeTx) GiftCards() shared.DiscountConsumer           { return t.consumers }
func (t *fakeTx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *fakeTx) Users() shared.UserRepository                 { return nil }
func (t *fakeTx) Reads() shared.CommandReads                   { return t.reads }
func (t *fakeTx) DB() db.DBTX                                  { return nil }

type fakeCartRepo struct {
	cart  *cart.Cart
	saved bool
}

func (r *fakeCartRepo) Create(context.Context, db.DBTX, *cart.Cart) error { return nil }

func (r *fakeCartRepo) FindByOwner(_ context.Context, _ db.DBTX, _ string) (*cart.Cart, error) {
	if r.cart == nil {
		return nil, infra.WrapRepoErr("cart not found", nil, infra.KindNotFound)
	}
	return r.cart, nil
}

func (r *fakeCartRepo) Save(_ context.Context, _ db.DBTX, c *cart.Cart) error {
	r.saved = true
	return nil
}

func (r *fakeCartRepo) SoftDeleteExpired(context.Context, db.DBTX, time.Time) (int64, error) {
	return 0, nil
}

type fakeOrderRepo struct {
	created       *order.Order
	createErr     error
	stored        *order.Order
	statusUpdates []order.Status
}

func (r *fakeOrderRepo) Create(_ context.Context, _ db.DBTX, o *order.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = o
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*order.Order, error) {
	if r.stored != nil && r.stored.ID() == id {
		return r.stored, nil
	}
	return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, _ db.DBTX, o *order.Order) error {
	r.statusUpdates = append(r.statusUpdates, o.Status())
	return nil
}

// fakeStockLedger records every reserve and release in order, and can be
// told to fail a specific reserve or every release.
type fakeStockLedger struct {
	reserves      []catalog.SKU
	releases      []catalog.SKU
	failReserveAt catalog.SKU
	failRelease   bool
}

func (l *fakeStockLedger) CheckAvailable(context.Context, db.DBTX, catalog.SKU, int32) (bool, error) {
	return true, nil
}

func (l *fakeStockLedger) Reserve(_ context.Context, _ db.DBTX, _ uuid.UUID, sku catalog.SKU, qty int32) (int32, error) {
	if sku == l.failReserveAt {
		return 0, infra.WrapRepoErr("insufficient stock", nil, infra.KindConflict)
	}
	l.reserves = append(l.reserves, sku)
	return 0, nil
}

func (l *fakeStockLedger) Release(_ context.Context, _ db.DBTX, _ uuid.UUID, sku catalog.SKU, qty int32) (int32, error) {
	if l.failRelease {
		return 0, infra.WrapRepoErr("variant row gone", nil, infra.KindNotFound)
	}
	l.releases = append(l.releases, sku)
	return 0, nil
}

type fakeDiscountConsumer struct {
	validateErr error
	consumed    []string
}

func (c *fakeDiscountConsumer) ValidateForRedemption(_ context.Context, _ db.DBTX, code string, _ int64, _ uuid.UUID, _ time.Time) (*shared.DiscountValidation, error) {
	if c.validateErr != nil {
		return nil, c.validateErr
	}
	return &shared.DiscountValidation{ReferenceID: uuid.New(), Code: code, Amount: 2000}, nil
}

func (c *fakeDiscountConsumer) MarkConsumed(_ context.Context, _ db.DBTX, code string, _ uuid.UUID, _ int64) error {
	c.consumed = append(c.consumed, code)
	return nil
}

type fakeNotificationRepo struct {
	jobs []string
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, _ db.DBTX, _, topic string, _ []byte, _ time.Time) error {
	r.jobs = append(r.jobs, topic)
	return nil
}

type fakeReads struct {
	stock int32
}

func (r *fakeReads) VariantBySKU(_ context.Context, sku catalog.SKU) (*shared.VariantSnapshot, error) {
	return &shared.VariantSnapshot{
		VariantID:    uuid.New(),
		ProductID:    uuid.New(),
		ProductName:  "Classic Diamond Ring",
		SKU:          sku.String(),
		Price:        52000,
		Stock:        r.stock,
		GrossWeight:  4.2,
		IsAvailable:  true,
	}, nil
}

func (fakeReads) UserByEmail(context.Context, string) (*shared.UserSnapshot, error) {
	return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
}

// --- harness ----------------------------------------------------------------

type checkoutEnv struct {
	uc     commands.CheckoutCommands
	tx     *fakeTx
	now    time.Time
	userID uuid.UUID
}

func newCheckoutEnv(t *testing.T, c *cart.Cart) *checkoutEnv {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tx := &fakeTx{
		carts:         &fakeCartRepo{cart: c},
		orders:        &fakeOrderRepo{},
		stock:         &fakeStockLedger{},
		consumers:     &fakeDiscountConsumer{},
		notifications: &fakeNotificationRepo{},
		reads:         &fakeReads{stock: 10},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := commands.NewCheckoutUseCase(&fakeUoW{tx: tx}, clock.NewMockClock(now), config.CheckoutConfig{
		ShippingCharge:        250,
		FreeShippingThreshold: 50000,
		CartTTL:               720 * time.Hour,
		DeliveryETA:           168 * time.Hour,
	}, logger)
	return &checkoutEnv{uc: uc, tx: tx, now: now, userID: uuid.New()}
}

func checkoutRequest() commands.CheckoutRequest {
	addr := order.Address{
		Name:       "Asha Verma",
		Line1:      "12 Marine Drive",
		City:       "Mumbai",
		State:      "MH",
		PostalCode: "400001",
		Country:    "IN",
		Phone:      "+91-9800000000",
	}
	return commands.CheckoutRequest{
		ShippingAddress: addr,
		BillingAddress:  addr,
		PaymentMethod:   "gateway",
	}
}

// --- tests ------------------------------------------------------------------

func TestCheckout(t *testing.T) {
	t.Run("converts the cart into an order", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		env := newCheckoutEnv(t, c)

		result, err := env.uc.Checkout(context.Background(), env.userID, checkoutRequest())

		require.NoError(t, err)
		assert.True(t, result.PaymentRequired)
		require.NotNil(t, env.tx.orders.created)
		// subtotal 52000 clears the free-shipping threshold
		assert.Equal(t, int64(52000), result.Total)
		assert.Equal(t, []catalog.SKU{"RING-18K-DIA-001"}, env.tx.stock.reserves)
		assert.Empty(t, env.tx.stock.releases)
		assert.True(t, env.tx.carts.saved)
		assert.True(t, c.IsEmpty())
		assert.Equal(t, []string{"order.placed"}, env.tx.notifications.jobs)
	})

	t.Run("charges shipping below the threshold", func(t *testing.T) {
		c := builder.NewCartBuilder().WithoutItems().WithItem("STUD-18K-001", 8000, 1).BuildDomain()
		env := newCheckoutEnv(t, c)

		result, err := env.uc.Checkout(context.Background(), env.userID, checkoutRequest())

		require.NoError(t, err)
		assert.Equal(t, int64(8250), result.Total)
	})

	t.Run("cash on delivery needs no gateway payment", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		env := newCheckoutEnv(t, c)

		req := checkoutRequest()
		req.PaymentMethod = "cod"
		result, err := env.uc.Checkout(context.Background(), env.userID, req)

		require.NoError(t, err)
		assert.False(t, result.PaymentRequired)
	})

	t.Run("empty cart", func(t *testing.T) {
		c := builder.NewCartBuilder().WithoutItems().BuildDomain()
		env := newCheckoutEnv(t, c)

		_, err := env.uc.Checkout(context.Background(), env.userID, checkoutRequest())
		assert.ErrorIs(t, err, commands.ErrEmptyCart)
	})

	t.Run("missing cart", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		env := newCheckoutEnv(t, c)
		env.tx.carts.cart = nil

		_, err := env.uc.Checkout(context.Background(), env.userID, checkoutRequest())
		assert.ErrorIs(t, err, commands.ErrCartNotFound)
	})

	t.Run("expired cart", func(t *testing.T) {
		c := builder.NewCartBuilder().With(func(b *builder.CartBuilder) {
			b.Now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
			b.TTL = time.Hour
		}).BuildDomain()
		env := newCheckoutEnv(t, c)

		_, err := env.uc.Checkout(context.Background(), env.userID, checkoutRequest())
		assert.ErrorIs(t, err, commands.ErrCartExpired)
	})

	t.Run("stale discount blocks checkout before stock moves", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		d, err := cart.NewAppliedDiscount(cart.KindCoupon, "SAVE20", uuid.New(), 2000, time.Now())
		require.NoError(t, err)
		require.NoError(t, c.ApplyDiscount(d))

		env := newCheckoutEnv(t, c)
		env.tx.consumers.validateErr = infra.WrapRepoErr("coupon exhausted", nil, infra.KindConflict)

		_, err = env.uc.Checkout(context.Background(), env.userID, checkoutRequest())

		assert.ErrorIs(t, err, commands.ErrDiscountNoLongerValid)
		assert.Empty(t, env.tx.stock.reserves)
	})

	t.Run("insufficient stock fails before anything is reserved", func(t *testing.T) {
		c := builder.NewCartBuilder().WithoutItems().WithItem("RING-18K-DIA-001", 52000, 2).BuildDomain()
		env := newCheckoutEnv(t, c)
		env.tx.reads.stock = 1

		_, err := env.uc.Checkout(context.Background(), env.userID, checkoutRequest())

		assert.ErrorIs(t, err, commands.ErrStockConflict)
		assert.Empty(t, env.tx.stock.reserves)
		assert.Nil(t, env.tx.orders.created)
	})
}

func TestCheckoutStockCompensation(t *testing.T) {
	threeLineCart := func() *cart.Cart {
		return builder.NewCartBuilder().
			WithItem("CHAIN-22K-001", 31000, 1).
			WithItem("STUD-18K-001", 8000, 2).
			BuildDomain()
	}

	t.Run("a failed reserve releases earlier lines in reverse order", func(t *testing.T) {
		c := threeLineCart()
		env := newCheckoutEnv(t, c)
		env.tx.stock.failReserveAt = "STUD-18K-001"

		_, err := env.uc.Checkout(context.Background(), env.userID, checkoutRequest())

		assert.ErrorIs(t, err, commands.ErrStockConflict)
		assert.Equal(t, []catalog.SKU{"RING-18K-DIA-001", "CHAIN-22K-001"}, env.tx.stock.reserves)
		assert.Equal(t, []catalog.SKU{"CHAIN-22K-001", "RING-18K-DIA-001"}, env.tx.stock.releases)
		assert.Nil(t, env.tx.orders.created)
		assert.False(t, c.IsEmpty())
	})

	t.Run("a failed order write releases every reservation", func(t *testing.T) {
		c := threeLineCart()
		env := newCheckoutEnv(t, c)
		env.tx.orders.createErr = infra.WrapRepoErr("insert failed", nil, infra.KindDBFailure)

		_, err := env.uc.Checkout(context.Background(), env.userID, checkoutRequest())

		require.Error(t, err)
		assert.Len(t, env.tx.stock.reserves, 3)
		assert.Equal(t, []catalog.SKU{"STUD-18K-001", "CHAIN-22K-001", "RING-18K-DIA-001"}, env.tx.stock.releases)
	})

	t.Run("a failed release surfaces as an internal inconsistency", func(t *testing.T) {
		c := threeLineCart()
		env := newCheckoutEnv(t, c)
		env.tx.stock.failReserveAt = "STUD-18K-001"
		env.tx.stock.failRelease = true

		_, err := env.uc.Checkout(context.Background(), env.userID, checkoutRequest())

		assert.ErrorIs(t, err, commands.ErrInternalInconsistency)
	})
}
