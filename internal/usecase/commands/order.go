package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"aurum-commerce/internal/domain/order"
	"aurum-commerce/internal/domain/user"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/pkg/clock"
	"aurum-commerce/internal/pkg/config"
	"aurum-commerce/internal/pkg/errs"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound    = errs.New("order not found")
	ErrOrderNotOwned    = errs.New("order not owned by user")
	ErrForbiddenForRole = errs.New("operation requires order management privileges")
)

type OrderCommands interface {
	// AdvanceStatus moves an order along the status graph. Staff only.
	AdvanceStatus(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID, next string) error
	// Cancel is available to the owner while the order is pending or
	// processing, and to staff at any cancellable point.
	Cancel(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID) error
	// Return is available for delivered orders only.
	Return(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID) error
}

type orderUseCaseImpl struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	checkout config.CheckoutConfig
	logger   *slog.Logger
}

func NewOrderUseCase(uow shared.UnitOfWork, clk clock.Clock, checkout config.CheckoutConfig, logger *slog.Logger) OrderCommands {
	return &orderUseCaseImpl{uow: uow, clock: clk, checkout: checkout, logger: logger}
}

func (uc *orderUseCaseImpl) AdvanceStatus(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID, next string) error {
	if !role.CanManageOrders() {
		return ErrForbiddenForRole
	}
	nextStatus, err := order.NewStatus(next)
	if err != nil {
		return err
	}

	return uc.transition(ctx, orderID, func(o *order.Order) error {
		return o.TransitionTo(nextStatus, uc.clock.Now(), uc.checkout.DeliveryETA)
	})
}

func (uc *orderUseCaseImpl) Cancel(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID) error {
	return uc.transitionOwned(ctx, actorID, role, orderID, func(o *order.Order) error {
		return o.Cancel(uc.clock.Now())
	})
}

func (uc *orderUseCaseImpl) Return(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID) error {
	return uc.transitionOwned(ctx, actorID, role, orderID, func(o *order.Order) error {
		return o.Return(uc.clock.Now())
	})
}

func (uc *orderUseCaseImpl) transitionOwned(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID, move func(o *order.Order) error) error {
	return uc.transition(ctx, orderID, func(o *order.Order) error {
		if !o.IsOwnedBy(actorID) && !role.CanManageOrders() {
			return ErrOrderNotOwned
		}
		return move(o)
	})
}

// transition loads the order, applies the move, persists the new status,
// and releases stock inside the same transaction when the target status
// calls for it. Stock release and the status write commit or roll back
// together; a cancelled order with unreturned stock cannot be observed.
func (uc *orderUseCaseImpl) transition(ctx context.Context, orderID uuid.UUID, move func(o *order.Order) error) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Orders().FindByID(ctx, tx.DB(), orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		before := o.Status()
		if err := move(o); err != nil {
			return err
		}

		if o.Status().ReleasesStock() && !before.ReleasesStock() {
			for _, item := range o.Items() {
				if _, err := tx.Stock().Release(ctx, tx.DB(), item.ProductID, item.SKU, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := tx.Orders().UpdateStatus(ctx, tx.DB(), o); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]string{
			"order_id":     o.ID().String(),
			"order_number": o.OrderNumber(),
			"status":       o.Status().String(),
		})
		if err := tx.Notifications().CreateJob(ctx, tx.DB(), "email", "order.status_changed", payload, uc.clock.Now()); err != nil {
			return err
		}

		uc.logger.InfoContext(ctx, "order status changed",
			slog.String("order_id", o.ID().String()),
			slog.String("from", before.String()),
			slog.String("to", o.Status().String()),
		)
		return nil
	})
}
