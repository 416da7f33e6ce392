package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"aurum-commerce/internal/domain/order"
	"aurum-commerce/internal/domain/payment"
	"aurum-commerce/internal/domain/user"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/pkg/clock"
	"aurum-commerce/internal/pkg/config"
	"aurum-commerce/internal/pkg/errs"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound     = errs.New("payment not found")
	ErrOrderAlreadyPaid    = errs.New("order is already paid")
	ErrOrderNotPayable     = errs.New("order is not in a payable status")
	ErrInvalidSignature    = errs.New("gateway signature verification failed")
	ErrPaymentNotCaptured  = errs.New("gateway reports the payment as not captured")
	ErrAmountMismatch      = errs.New("gateway amount does not match the payment record")
	ErrCODAmountMismatch   = errs.New("collected amount does not match the order total")
	ErrNotCODOrder         = errs.New("order is not cash on delivery")
	ErrRefundNotFound      = errs.New("refund not found")
	ErrUnknownWebhookEvent = errs.New("unhandled webhook event")
	ErrGatewayFailure      = errs.New("payment gateway call failed")
)

type InitiatePaymentResult struct {
	PaymentID        uuid.UUID
	GatewayOrderID   string
	AmountMinorUnits int64
	Currency         string
	Method           string
}

type ConfirmGatewayPaymentRequest struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

type RefundResult struct {
	RefundID uuid.UUID
	Amount   int64
	Status   string
}

type PaymentCommands interface {
	// InitiatePayment creates (or reuses) the order's payment record. For
	// gateway orders it registers a gateway order and returns its token;
	// for cash on delivery it just records the pending collection.
	InitiatePayment(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*InitiatePaymentResult, error)
	// HandleGatewayConfirmation processes the buyer-side checkout callback.
	HandleGatewayConfirmation(ctx context.Context, req ConfirmGatewayPaymentRequest) error
	// HandleWebhook processes a signed gateway webhook delivery. Safe under
	// redelivery: a second capture of the same payment is a no-op.
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	// ConfirmCODPayment records cash collection on delivery. Staff only.
	ConfirmCODPayment(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID, collectedAmount int64) error
	// InitiateRefund opens a pending refund bounded by the refundable
	// remainder. Staff only.
	InitiateRefund(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID, amount int64, reason string) (*RefundResult, error)
	// ProcessRefund settles a pending refund through the gateway (or
	// directly for cash orders). Staff only.
	ProcessRefund(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID, refundID uuid.UUID) (*RefundResult, error)
}

type paymentUseCaseImpl struct {
	uow      shared.UnitOfWork
	gateway  shared.PaymentGateway
	clock    clock.Clock
	gwCfg    config.GatewayConfig
	checkout config.CheckoutConfig
	logger   *slog.Logger
}

func NewPaymentUseCase(
	uow shared.UnitOfWork,
	gw shared.PaymentGateway,
	clk clock.Clock,
	gwCfg config.GatewayConfig,
	checkout config.CheckoutConfig,
	logger *slog.Logger,
) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:      uow,
		gateway:  gw,
		clock:    clk,
		gwCfg:    gwCfg,
		checkout: checkout,
		logger:   logger,
	}
}

func (uc *paymentUseCaseImpl) InitiatePayment(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*InitiatePaymentResult, error) {
	now := uc.clock.Now()

	// Load the order and the existing payment record, if any, before
	// talking to the gateway; the gateway call must stay outside any
	// database transaction.
	var (
		ord *order.Order
		pay *payment.Payment
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var derr error
		ord, derr = tx.Orders().FindByID(ctx, tx.DB(), orderID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return derr
		}
		if !ord.IsOwnedBy(userID) {
			return ErrOrderNotOwned
		}
		if ord.Status() != order.StatusPending {
			return ErrOrderNotPayable
		}

		pay, derr = tx.Payments().FindByOrderID(ctx, tx.DB(), orderID)
		if derr != nil && !infra.IsKind(derr, infra.KindNotFound) {
			return derr
		}
		if pay != nil && pay.IsCaptured() {
			return ErrOrderAlreadyPaid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	create := pay == nil
	if create {
		pay, err = payment.NewPayment(orderID, userID, ord.Total(), uc.gwCfg.Currency, ord.PaymentMethod(), now)
		if err != nil {
			return nil, err
		}
	}

	var gatewayOrderID string
	if ord.PaymentMethod() == order.MethodGateway {
		gatewayOrderID, err = uc.gateway.CreateOrder(ctx, ord.OrderNumber(), pay.AmountMinorUnits(), pay.Currency(), map[string]string{
			"order_id": orderID.String(),
		})
		if err != nil {
			return nil, errs.Mark(err, ErrGatewayFailure)
		}
		if err = pay.AttachGatewayOrder(gatewayOrderID, now); err != nil {
			return nil, err
		}
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if create {
			if derr := tx.Payments().Create(ctx, tx.DB(), pay); derr != nil {
				return derr
			}
		} else if derr := tx.Payments().Update(ctx, tx.DB(), pay); derr != nil {
			return derr
		}
		if ord.PaymentMethod() == order.MethodCashOnDelivery {
			// Cash orders go out for delivery right away; capture happens
			// at the door via ConfirmCODPayment.
			_, derr := uc.advanceToProcessing(ctx, tx, orderID, now)
			return derr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &InitiatePaymentResult{
		PaymentID:        pay.ID(),
		GatewayOrderID:   gatewayOrderID,
		AmountMinorUnits: pay.AmountMinorUnits(),
		Currency:         pay.Currency(),
		Method:           pay.Method().String(),
	}, nil
}

func (uc *paymentUseCaseImpl) HandleGatewayConfirmation(ctx context.Context, req ConfirmGatewayPaymentRequest) error {
	if !uc.gateway.VerifyPaymentSignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		return ErrInvalidSignature
	}
	return uc.capture(ctx, req.GatewayOrderID, req.GatewayPaymentID)
}

// webhookEvent mirrors the gateway's webhook envelope.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Status           string `json:"status"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (uc *paymentUseCaseImpl) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !uc.gateway.VerifyWebhookSignature(body, signature) {
		return ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return errs.Wrap(err, "failed to decode webhook payload")
	}
	entity := event.Payload.Payment.Entity

	switch event.Event {
	case "payment.captured":
		return uc.capture(ctx, entity.OrderID, entity.ID)
	case "payment.failed":
		reason := entity.ErrorDescription
		if reason == "" {
			reason = "payment failed at gateway"
		}
		return uc.fail(ctx, entity.OrderID, reason)
	default:
		uc.logger.InfoContext(ctx, "ignoring webhook event", slog.String("event", event.Event))
		return errs.Mark(errs.Newf("webhook event %q", event.Event), ErrUnknownWebhookEvent)
	}
}

// capture is the single capture path for callbacks and webhooks. The
// inbound identifiers are treated as hints only: the payment is re-fetched
// from the gateway and its status and amount are checked against our
// record before anything transitions.
func (uc *paymentUseCaseImpl) capture(ctx context.Context, gatewayOrderID, gatewayPaymentID string) error {
	now := uc.clock.Now()

	gwPayment, err := uc.gateway.FetchPayment(ctx, gatewayPaymentID)
	if err != nil {
		return errs.Mark(err, ErrGatewayFailure)
	}
	if gwPayment.Status != "captured" {
		return ErrPaymentNotCaptured
	}
	if gwPayment.GatewayOrderID != gatewayOrderID {
		return ErrInvalidSignature
	}

	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pay, derr := tx.Payments().FindByGatewayOrderID(ctx, tx.DB(), gatewayOrderID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return derr
		}

		if gwPayment.AmountMinorUnits != pay.AmountMinorUnits() {
			return ErrAmountMismatch
		}

		pid := gatewayPaymentID
		if derr = pay.Capture(&pid, now); derr != nil {
			if errors.Is(derr, payment.ErrAlreadyCaptured) {
				// Webhook redelivery; the first delivery already did the work.
				return nil
			}
			return derr
		}
		if derr = tx.Payments().Update(ctx, tx.DB(), pay); derr != nil {
			return derr
		}

		return uc.markOrderPaid(ctx, tx, pay.OrderID(), now)
	})
}

func (uc *paymentUseCaseImpl) fail(ctx context.Context, gatewayOrderID, reason string) error {
	now := uc.clock.Now()

	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pay, derr := tx.Payments().FindByGatewayOrderID(ctx, tx.DB(), gatewayOrderID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return derr
		}

		if derr = pay.Fail(reason, now); derr != nil {
			if errors.Is(derr, payment.ErrAlreadyCaptured) {
				// A capture beat the failure notification; keep the capture.
				return nil
			}
			return derr
		}
		if derr = tx.Payments().Update(ctx, tx.DB(), pay); derr != nil {
			return derr
		}

		ord, derr := tx.Orders().FindByID(ctx, tx.DB(), pay.OrderID())
		if derr != nil {
			return derr
		}
		if ord.Status() == order.StatusPending {
			if derr = ord.TransitionTo(order.StatusFailed, now, 0); derr != nil {
				return derr
			}
			if derr = tx.Orders().UpdateStatus(ctx, tx.DB(), ord); derr != nil {
				return derr
			}
		}

		uc.logger.WarnContext(ctx, "payment failed",
			slog.String("order_id", pay.OrderID().String()),
			slog.String("reason", reason),
		)
		return nil
	})
}

func (uc *paymentUseCaseImpl) ConfirmCODPayment(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID, collectedAmount int64) error {
	if !role.CanManageOrders() {
		return ErrForbiddenForRole
	}
	now := uc.clock.Now()

	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pay, derr := tx.Payments().FindByOrderID(ctx, tx.DB(), orderID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return derr
		}
		if pay.Method() != order.MethodCashOnDelivery {
			return ErrNotCODOrder
		}

		if collectedAmount != pay.Amount() {
			if uc.checkout.StrictCODAmount() {
				return ErrCODAmountMismatch
			}
			uc.logger.WarnContext(ctx, "cod amount mismatch tolerated",
				slog.String("order_id", orderID.String()),
				slog.Int64("expected", pay.Amount()),
				slog.Int64("collected", collectedAmount),
			)
		}

		if derr = pay.Capture(nil, now); derr != nil {
			if errors.Is(derr, payment.ErrAlreadyCaptured) {
				return nil
			}
			return derr
		}
		if derr = tx.Payments().Update(ctx, tx.DB(), pay); derr != nil {
			return derr
		}
		return uc.markOrderPaid(ctx, tx, orderID, now)
	})
}

func (uc *paymentUseCaseImpl) InitiateRefund(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID, amount int64, reason string) (*RefundResult, error) {
	if !role.CanManageOrders() {
		return nil, ErrForbiddenForRole
	}
	now := uc.clock.Now()

	var refund payment.Refund
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pay, derr := tx.Payments().FindByOrderID(ctx, tx.DB(), orderID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return derr
		}

		refund, derr = pay.InitiateRefund(amount, reason, now)
		if derr != nil {
			return derr
		}
		return tx.Payments().AddRefund(ctx, tx.DB(), pay.ID(), refund)
	})
	if err != nil {
		return nil, err
	}

	return &RefundResult{RefundID: refund.ID, Amount: refund.Amount, Status: refund.Status.String()}, nil
}

func (uc *paymentUseCaseImpl) ProcessRefund(ctx context.Context, actorID uuid.UUID, role user.Role, orderID uuid.UUID, refundID uuid.UUID) (*RefundResult, error) {
	if !role.CanManageOrders() {
		return nil, ErrForbiddenForRole
	}
	now := uc.clock.Now()

	var (
		pay    *payment.Payment
		target *payment.Refund
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var derr error
		pay, derr = tx.Payments().FindByOrderID(ctx, tx.DB(), orderID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return derr
		}
		for i := range pay.Refunds() {
			if pay.Refunds()[i].ID == refundID {
				r := pay.Refunds()[i]
				target = &r
				return nil
			}
		}
		return ErrRefundNotFound
	})
	if err != nil {
		return nil, err
	}
	if target.Status != payment.RefundPending {
		return nil, payment.ErrRefundNotPending
	}

	// Cash refunds settle directly; gateway refunds go through the
	// provider first and only a successful provider call marks processed.
	var gatewayRefundID *string
	status := payment.RefundProcessed
	if pay.Method() == order.MethodGateway && pay.GatewayPaymentID() != nil {
		id, gerr := uc.gateway.Refund(ctx, *pay.GatewayPaymentID(), target.Amount*100, map[string]string{
			"order_id":  orderID.String(),
			"refund_id": refundID.String(),
		})
		if gerr != nil {
			uc.logger.ErrorContext(ctx, "gateway refund failed",
				slog.String("order_id", orderID.String()),
				slog.String("refund_id", refundID.String()),
				slog.Any("error", gerr),
			)
			status = payment.RefundFailed
		} else {
			gatewayRefundID = &id
		}
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if derr := pay.SettleRefund(refundID, status, gatewayRefundID, now); derr != nil {
			return derr
		}
		for _, r := range pay.Refunds() {
			if r.ID == refundID {
				return tx.Payments().UpdateRefund(ctx, tx.DB(), pay.ID(), r)
			}
		}
		return ErrRefundNotFound
	})
	if err != nil {
		return nil, err
	}

	return &RefundResult{RefundID: refundID, Amount: target.Amount, Status: status.String()}, nil
}

// markOrderPaid records the side effects of a capture: the order advances
// to processing (if it has not already) and the captured notification is
// queued. Only called after a first-time Capture succeeded.
func (uc *paymentUseCaseImpl) markOrderPaid(ctx context.Context, tx shared.Tx, orderID uuid.UUID, now time.Time) error {
	ord, err := uc.advanceToProcessing(ctx, tx, orderID, now)
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string]string{
		"order_id":     ord.ID().String(),
		"order_number": ord.OrderNumber(),
	})
	return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "payment.captured", payload, now)
}

// advanceToProcessing moves a pending order to processing. An order already
// moved along (or cancelled meanwhile) is left alone.
func (uc *paymentUseCaseImpl) advanceToProcessing(ctx context.Context, tx shared.Tx, orderID uuid.UUID, now time.Time) (*order.Order, error) {
	ord, err := tx.Orders().FindByID(ctx, tx.DB(), orderID)
	if err != nil {
		return nil, err
	}
	if ord.Status() != order.StatusPending {
		return ord, nil
	}
	if err := ord.TransitionTo(order.StatusProcessing, now, uc.checkout.DeliveryETA); err != nil {
		return nil, err
	}
	if err := tx.Orders().UpdateStatus(ctx, tx.DB(), ord); err != nil {
		return nil, err
	}
	return ord, nil
}
