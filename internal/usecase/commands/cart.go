package commands

import (
	"context"

	"aurum-commerce/internal/domain/cart"
	"aurum-commerce/internal/domain/catalog"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/pkg/clock"
	"aurum-commerce/internal/pkg/config"
	"aurum-commerce/internal/pkg/errs"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrVariantNotFound     = errs.New("variant not found")
	ErrVariantUnavailable  = errs.New("variant not available")
	ErrInsufficientStock   = errs.New("insufficient stock")
	ErrCartNotFound        = errs.New("cart not found")
	ErrCartItemNotFound    = errs.New("cart item not found")
	ErrEmptyCart           = errs.New("cart is empty")
	ErrDiscountNotFound    = errs.New("discount code not found")
	ErrDiscountNotEligible = errs.New("discount code not eligible")
	ErrDiscountSlotTaken   = errs.New("a discount of this kind is already applied")
	ErrDiscountNotApplied  = errs.New("no discount of this kind is applied")
)

type AddItemRequest struct {
	SKU           string
	Quantity      int32
	SelectedImage string
}

type CartCommands interface {
	AddItem(ctx context.Context, ownerID string, req AddItemRequest) error
	UpdateItemQuantity(ctx context.Context, ownerID string, itemID uuid.UUID, quantity int32) error
	RemoveItem(ctx context.Context, ownerID string, itemID uuid.UUID) error
	ApplyDiscount(ctx context.Context, ownerID string, userID uuid.UUID, kind, code string) error
	RemoveDiscount(ctx context.Context, ownerID string, kind string) error
}

type cartUseCaseImpl struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	checkout config.CheckoutConfig
}

func NewCartUseCase(uow shared.UnitOfWork, clk clock.Clock, checkout config.CheckoutConfig) CartCommands {
	return &cartUseCaseImpl{uow: uow, clock: clk, checkout: checkout}
}

// AddItem lazily creates the owner's cart, then appends the line or bumps
// the quantity of an existing line with the same SKU. The line captures the
// variant's current price; stock is only checked here, never reserved.
func (uc *cartUseCaseImpl) AddItem(ctx context.Context, ownerID string, req AddItemRequest) error {
	sku, err := catalog.NewSKU(req.SKU)
	if err != nil {
		return err
	}

	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Reads().VariantBySKU(ctx, sku)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrVariantNotFound
			}
			return derr
		}
		if !snap.IsAvailable {
			return ErrVariantUnavailable
		}
		if snap.Stock < req.Quantity {
			return ErrInsufficientStock
		}

		c, created, derr := uc.loadOrCreateCart(ctx, tx, ownerID)
		if derr != nil {
			return derr
		}

		karat, derr := catalog.NewKarat(snap.Karat)
		if derr != nil {
			return derr
		}
		stone, derr := catalog.NewStoneType(snap.StoneType)
		if derr != nil {
			return derr
		}

		item, derr := cart.NewLineItem(snap.ProductID, sku, karat, stone, snap.Price, req.Quantity, req.SelectedImage, uc.clock.Now())
		if derr != nil {
			return derr
		}
		c.AddItem(item)
		c.Touch(uc.clock.Now(), uc.checkout.CartTTL)

		if created {
			return tx.Carts().Create(ctx, tx.DB(), c)
		}
		return tx.Carts().Save(ctx, tx.DB(), c)
	})
}

func (uc *cartUseCaseImpl) UpdateItemQuantity(ctx context.Context, ownerID string, itemID uuid.UUID, quantity int32) error {
	return uc.mutateCart(ctx, ownerID, func(c *cart.Cart) error {
		if err := c.UpdateItemQuantity(itemID, quantity); err != nil {
			return errs.Mark(err, ErrCartItemNotFound)
		}
		return nil
	})
}

func (uc *cartUseCaseImpl) RemoveItem(ctx context.Context, ownerID string, itemID uuid.UUID) error {
	return uc.mutateCart(ctx, ownerID, func(c *cart.Cart) error {
		if err := c.RemoveItem(itemID); err != nil {
			return errs.Mark(err, ErrCartItemNotFound)
		}
		return nil
	})
}

// ApplyDiscount validates the code with its collaborator against the
// current pre-discount subtotal and occupies the matching slot. Nothing is
// consumed until checkout.
func (uc *cartUseCaseImpl) ApplyDiscount(ctx context.Context, ownerID string, userID uuid.UUID, kind, code string) error {
	discountKind, err := cart.NewDiscountKind(kind)
	if err != nil {
		return err
	}

	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		c, derr := uc.loadCart(ctx, tx, ownerID)
		if derr != nil {
			return derr
		}
		if c.IsEmpty() {
			return ErrEmptyCart
		}

		subtotal := c.Totals().Subtotal
		validation, derr := consumerFor(tx, discountKind).ValidateForRedemption(ctx, tx.DB(), code, subtotal, userID, uc.clock.Now())
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrDiscountNotFound
			}
			if infra.IsKind(derr, infra.KindConflict) {
				return ErrDiscountNotEligible
			}
			return derr
		}

		applied, derr := cart.NewAppliedDiscount(discountKind, validation.Code, validation.ReferenceID, validation.Amount, uc.clock.Now())
		if derr != nil {
			return derr
		}
		if derr = c.ApplyDiscount(applied); derr != nil {
			return errs.Mark(derr, ErrDiscountSlotTaken)
		}

		c.Touch(uc.clock.Now(), uc.checkout.CartTTL)
		return tx.Carts().Save(ctx, tx.DB(), c)
	})
}

func (uc *cartUseCaseImpl) RemoveDiscount(ctx context.Context, ownerID string, kind string) error {
	discountKind, err := cart.NewDiscountKind(kind)
	if err != nil {
		return err
	}

	return uc.mutateCart(ctx, ownerID, func(c *cart.Cart) error {
		if err := c.RemoveDiscount(discountKind); err != nil {
			return errs.Mark(err, ErrDiscountNotApplied)
		}
		return nil
	})
}

func (uc *cartUseCaseImpl) mutateCart(ctx context.Context, ownerID string, mutate func(c *cart.Cart) error) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		c, err := uc.loadCart(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if err := mutate(c); err != nil {
			return err
		}
		c.Touch(uc.clock.Now(), uc.checkout.CartTTL)
		return tx.Carts().Save(ctx, tx.DB(), c)
	})
}

func (uc *cartUseCaseImpl) loadCart(ctx context.Context, tx shared.Tx, ownerID string) (*cart.Cart, error) {
	c, err := tx.Carts().FindByOwner(ctx, tx.DB(), ownerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return c, nil
}

// loadOrCreateCart returns (cart, created). An expired cart that the sweep
// has not collected yet is emptied in place rather than resurrected.
func (uc *cartUseCaseImpl) loadOrCreateCart(ctx context.Context, tx shared.Tx, ownerID string) (*cart.Cart, bool, error) {
	c, err := tx.Carts().FindByOwner(ctx, tx.DB(), ownerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return cart.NewCart(ownerID, uc.clock.Now(), uc.checkout.CartTTL), true, nil
		}
		return nil, false, err
	}
	if c.HasExpired(uc.clock.Now()) {
		c.Clear()
	}
	return c, false, nil
}

func consumerFor(tx shared.Tx, kind cart.DiscountKind) shared.DiscountConsumer {
	switch kind {
	case cart.KindVoucher:
		return tx.Vouchers()
	case cart.KindGiftCard:
		return tx.GiftCards()
	default:
		return tx.Coupons()
	}
}
