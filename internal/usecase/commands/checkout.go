package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"aurum-commerce/internal/domain/cart"
	"aurum-commerce/internal/domain/order"
	"aurum-commerce/internal/domain/pricing"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/pkg/clock"
	"aurum-commerce/internal/pkg/config"
	"aurum-commerce/internal/pkg/errs"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCartExpired           = errs.New("cart has expired")
	ErrDiscountNoLongerValid = errs.New("an applied discount is no longer valid")
	ErrStockConflict         = errs.New("insufficient stock for a cart item")
	// ErrInternalInconsistency marks a failed compensation: reserved stock
	// could not be released and the ledger may be off until reconciled.
	ErrInternalInconsistency = errs.New("internal inconsistency: stock compensation failed")
)

type CheckoutRequest struct {
	ShippingAddress order.Address
	BillingAddress  order.Address
	PaymentMethod   string
	Notes           string
}

type CheckoutResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	Total       int64
	// PaymentRequired is false for cash on delivery.
	PaymentRequired bool
}

type CheckoutCommands interface {
	Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error)
}

type checkoutUseCaseImpl struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	checkout config.CheckoutConfig
	logger   *slog.Logger
}

func NewCheckoutUseCase(uow shared.UnitOfWork, clk clock.Clock, checkout config.CheckoutConfig, logger *slog.Logger) CheckoutCommands {
	return &checkoutUseCaseImpl{uow: uow, clock: clk, checkout: checkout, logger: logger}
}

// reservation is one successfully decremented line, remembered so a later
// failure can put the quantity back.
type reservation struct {
	productID uuid.UUID
	item      cart.LineItem
}

// Checkout converts the user's cart into an immutable order:
//
//  1. load and validate the cart,
//  2. re-validate every applied discount against the current subtotal,
//  3. reserve stock line by line (each reservation commits on its own),
//  4. consume discounts, write the order, and clear the cart in one
//     transaction.
//
// A failure after step 3 releases the reserved quantities in reverse order.
// If a release itself fails the error is marked ErrInternalInconsistency and
// surfaced; it is never swallowed.
func (uc *checkoutUseCaseImpl) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	method, err := order.NewPaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := req.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	if err := req.BillingAddress.Validate(); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	ownerID := userID.String()

	var (
		c         *cart.Cart
		items     []order.ItemSnapshot
		discounts pricing.DiscountAmounts
	)
	// Step 1+2: read the cart, snapshot its items, and re-price every
	// discount so stale slot amounts (a spent gift card, an expired coupon)
	// are caught before any stock moves.
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var derr error
		c, derr = tx.Carts().FindByOwner(ctx, tx.DB(), ownerID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrCartNotFound
			}
			return derr
		}
		if c.IsEmpty() {
			return ErrEmptyCart
		}
		if c.HasExpired(now) {
			return ErrCartExpired
		}

		items, derr = uc.snapshotItems(ctx, tx, c)
		if derr != nil {
			return derr
		}

		discounts, derr = uc.revalidateDiscounts(ctx, tx, c, userID, now)
		return derr
	})
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.LineAmount, len(items))
	for i, item := range items {
		lines[i] = pricing.LineAmount{UnitPrice: item.PriceAtPurchase, Quantity: item.Quantity}
	}
	totals := pricing.ComputeCartTotals(lines, discounts)

	shippingCharge := uc.checkout.ShippingCharge
	if totals.Subtotal >= uc.checkout.FreeShippingThreshold {
		shippingCharge = 0
	}

	newOrder, err := order.NewOrder(
		userID,
		items,
		req.ShippingAddress,
		req.BillingAddress,
		totals.Subtotal,
		order.DiscountSnapshot{
			CouponAmount:   totals.CouponAmount,
			VoucherAmount:  totals.VoucherAmount,
			GiftCardAmount: totals.GiftCardAmount,
		},
		shippingCharge,
		0,
		totals.Total+shippingCharge,
		method,
		req.Notes,
		now,
	)
	if err != nil {
		return nil, err
	}

	// Step 3: reserve stock. Each decrement is its own committed statement
	// so concurrent checkouts contend per variant, not per checkout.
	reserved, err := uc.reserveStock(ctx, c)
	if err != nil {
		return nil, err
	}

	// Step 4: consume discounts, persist the order, clear the cart.
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, d := range c.AppliedDiscounts() {
			amount := discountAmount(totals, d.Kind)
			if amount == 0 {
				continue
			}
			if derr := consumerFor(tx, d.Kind).MarkConsumed(ctx, tx.DB(), d.Code, userID, amount); derr != nil {
				if infra.IsKind(derr, infra.KindNotFound) || infra.IsKind(derr, infra.KindConflict) {
					return errs.Mark(derr, ErrDiscountNoLongerValid)
				}
				return derr
			}
		}

		if derr := tx.Orders().Create(ctx, tx.DB(), newOrder); derr != nil {
			return derr
		}

		c.Clear()
		c.Touch(now, uc.checkout.CartTTL)
		if derr := tx.Carts().Save(ctx, tx.DB(), c); derr != nil {
			return derr
		}

		payload, _ := json.Marshal(map[string]string{
			"order_id":     newOrder.ID().String(),
			"order_number": newOrder.OrderNumber(),
		})
		return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "order.placed", payload, now)
	})
	if err != nil {
		if cerr := uc.releaseReservations(ctx, reserved); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}

	uc.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", newOrder.ID().String()),
		slog.String("order_number", newOrder.OrderNumber()),
		slog.Int64("total", newOrder.Total()),
		slog.String("payment_method", method.String()),
	)

	return &CheckoutResult{
		OrderID:         newOrder.ID(),
		OrderNumber:     newOrder.OrderNumber(),
		Total:           newOrder.Total(),
		PaymentRequired: method == order.MethodGateway,
	}, nil
}

func (uc *checkoutUseCaseImpl) snapshotItems(ctx context.Context, tx shared.Tx, c *cart.Cart) ([]order.ItemSnapshot, error) {
	items := make([]order.ItemSnapshot, 0, len(c.Items()))
	for _, line := range c.Items() {
		snap, err := tx.Reads().VariantBySKU(ctx, line.SKU)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, ErrVariantNotFound
			}
			return nil, err
		}
		if !snap.IsAvailable {
			return nil, ErrVariantUnavailable
		}
		// Fast-fail before anything is reserved; the conditional decrement
		// in reserveStock remains the authoritative check.
		if snap.Stock < line.Quantity {
			return nil, ErrStockConflict
		}

		item, err := order.NewItemSnapshot(
			line.ProductID,
			snap.ProductName,
			line.SKU,
			line.Karat,
			line.StoneType,
			line.UnitPrice,
			line.Quantity,
			snap.ProductImage,
			snap.GrossWeight,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// revalidateDiscounts re-runs each slot's validation at checkout time. The
// amounts captured when the slot was applied are advisory only.
func (uc *checkoutUseCaseImpl) revalidateDiscounts(ctx context.Context, tx shared.Tx, c *cart.Cart, userID uuid.UUID, now time.Time) (pricing.DiscountAmounts, error) {
	var discounts pricing.DiscountAmounts
	subtotal := c.Totals().Subtotal

	for _, d := range c.AppliedDiscounts() {
		validation, err := consumerFor(tx, d.Kind).ValidateForRedemption(ctx, tx.DB(), d.Code, subtotal, userID, now)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) || infra.IsKind(err, infra.KindConflict) {
				return pricing.DiscountAmounts{}, errs.Mark(err, ErrDiscountNoLongerValid)
			}
			return pricing.DiscountAmounts{}, err
		}

		amount := validation.Amount
		switch d.Kind {
		case cart.KindCoupon:
			discounts.Coupon = &amount
		case cart.KindVoucher:
			discounts.Voucher = &amount
		case cart.KindGiftCard:
			discounts.GiftCardBalance = &amount
		}
	}
	return discounts, nil
}

func (uc *checkoutUseCaseImpl) reserveStock(ctx context.Context, c *cart.Cart) ([]reservation, error) {
	reserved := make([]reservation, 0, len(c.Items()))
	for _, line := range c.Items() {
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			_, rerr := tx.Stock().Reserve(ctx, tx.DB(), line.ProductID, line.SKU, line.Quantity)
			return rerr
		})
		if err != nil {
			if cerr := uc.releaseReservations(ctx, reserved); cerr != nil {
				return nil, cerr
			}
			if infra.IsKind(err, infra.KindConflict) {
				return nil, errs.Mark(err, ErrStockConflict)
			}
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, errs.Mark(err, ErrVariantNotFound)
			}
			return nil, err
		}
		reserved = append(reserved, reservation{productID: line.ProductID, item: line})
	}
	return reserved, nil
}

// releaseReservations compensates in reverse order. A failed release is the
// one error this flow must never hide.
func (uc *checkoutUseCaseImpl) releaseReservations(ctx context.Context, reserved []reservation) error {
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			_, rerr := tx.Stock().Release(ctx, tx.DB(), r.productID, r.item.SKU, r.item.Quantity)
			return rerr
		})
		if err != nil {
			uc.logger.ErrorContext(ctx, "stock release failed during checkout compensation",
				slog.String("sku", r.item.SKU.String()),
				slog.Int("quantity", int(r.item.Quantity)),
				slog.Any("error", err),
			)
			return errs.Mark(err, ErrInternalInconsistency)
		}
	}
	return nil
}

func discountAmount(totals pricing.CartTotals, kind cart.DiscountKind) int64 {
	switch kind {
	case cart.KindCoupon:
		return totals.CouponAmount
	case cart.KindVoucher:
		return totals.VoucherAmount
	case cart.KindGiftCard:
		return totals.GiftCardAmount
	default:
		return 0
	}
}
