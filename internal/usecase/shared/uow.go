package shared

import (
	"context"
	"time"

	"aurum-commerce/internal/domain/cart"
	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/domain/order"
	"aurum-commerce/internal/domain/payment"
	"aurum-commerce/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Carts() CartRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Stock() StockLedger
	Coupons() DiscountConsumer
	Vouchers() DiscountConsumer
	GiftCards() DiscountConsumer
	Notifications() NotificationRepository
	Users() UserRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	VariantBySKU(ctx context.Context, sku catalog.SKU) (*VariantSnapshot, error)
	UserByEmail(ctx context.Context, email string) (*UserSnapshot, error)
}

type CartRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, c *cart.Cart) error
	FindByOwner(ctx context.Context, dbtx db.DBTX, ownerID string) (*cart.Cart, error)
	// Save rewrites items and discount slots wholesale; carts are small.
	Save(ctx context.Context, dbtx db.DBTX, c *cart.Cart) error
	SoftDeleteExpired(ctx context.Context, dbtx db.DBTX, now time.Time) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, o *order.Order) error
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*order.Order, error)
	// UpdateStatus persists the status and whatever side-effect fields the
	// transition touched (ETA, tracking number, timestamps).
	UpdateStatus(ctx context.Context, dbtx db.DBTX, o *order.Order) error
}

type PaymentRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, p *payment.Payment) error
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*payment.Payment, error)
	FindByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) (*payment.Payment, error)
	FindByGatewayOrderID(ctx context.Context, dbtx db.DBTX, gatewayOrderID string) (*payment.Payment, error)
	Update(ctx context.Context, dbtx db.DBTX, p *payment.Payment) error
	AddRefund(ctx context.Context, dbtx db.DBTX, paymentID uuid.UUID, r payment.Refund) error
	UpdateRefund(ctx context.Context, dbtx db.DBTX, paymentID uuid.UUID, r payment.Refund) error
}

// StockLedger wraps the catalog's per-variant stock with the only safe
// mutation primitives under concurrent checkouts: a conditional decrement
// and an unconditional compensating increment.
type StockLedger interface {
	CheckAvailable(ctx context.Context, dbtx db.DBTX, sku catalog.SKU, quantity int32) (bool, error)
	// Reserve decrements atomically, guarded by stock >= quantity; a failed
	// guard surfaces as a CONFLICT repository error.
	Reserve(ctx context.Context, dbtx db.DBTX, productID uuid.UUID, sku catalog.SKU, quantity int32) (int32, error)
	Release(ctx context.Context, dbtx db.DBTX, productID uuid.UUID, sku catalog.SKU, quantity int32) (int32, error)
}

// DiscountConsumer is the validate/consume contract each discount kind
// implements independently.
type DiscountConsumer interface {
	// ValidateForRedemption computes the redeemable amount against the
	// pre-discount subtotal, judging validity windows against the caller's
	// clock. NOT_FOUND means "not this kind", which callers tolerate while
	// trying the other kinds.
	ValidateForRedemption(ctx context.Context, dbtx db.DBTX, code string, subtotal int64, userID uuid.UUID, now time.Time) (*DiscountValidation, error)
	MarkConsumed(ctx context.Context, dbtx db.DBTX, code string, userID uuid.UUID, amount int64) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}

type UserRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, email, passwordHash, role string) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) error
}
