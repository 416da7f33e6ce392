package api

import (
	"errors"
	"io"
	"net/http"

	reqdto "aurum-commerce/internal/handler/dto/request"
	resdto "aurum-commerce/internal/handler/dto/response"
	"aurum-commerce/internal/handler/httperr"
	"aurum-commerce/internal/handler/middleware"
	"aurum-commerce/internal/usecase/commands"
	"aurum-commerce/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Webhook deliveries are small JSON envelopes; anything bigger is abuse.
const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	cmds commands.PaymentCommands
	q    queries.PaymentQueries
}

func NewPaymentHandler(cmds commands.PaymentCommands, q queries.PaymentQueries) *PaymentHandler {
	return &PaymentHandler{cmds: cmds, q: q}
}

// @Summary Initiate payment
// @Description Create (or reuse) the payment record for a pending order and
// @Description register a gateway order when the method requires one
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.InitiatePaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /orders/{id}/payment [post]
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}

	result, err := h.cmds.InitiatePayment(c.Request.Context(), userID, orderID)
	if err != nil {
		abortPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromInitiatePaymentResult(result))
}

// @Summary Confirm gateway payment
// @Description Verify the browser-side checkout callback signature and capture
// @Tags payments
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.ConfirmPaymentRequest true "Gateway callback fields"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /payments/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req reqdto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	if err := h.cmds.HandleGatewayConfirmation(c.Request.Context(), req.ToCommand()); err != nil {
		abortPaymentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Gateway webhook
// @Description Receive a signed gateway event. Idempotent under redelivery.
// @Tags payments
// @Accept json
// @Param X-Razorpay-Signature header string true "HMAC signature over the raw body"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /webhooks/payment [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable body", nil)
		return
	}
	signature := c.GetHeader("X-Razorpay-Signature")

	if err := h.cmds.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		switch {
		case errors.Is(err, commands.ErrInvalidSignature):
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid signature", nil)
		case errors.Is(err, commands.ErrUnknownWebhookEvent):
			// Acknowledge so the gateway stops redelivering events we
			// deliberately ignore.
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		default:
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Webhook processing failed", nil)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Get payment
// @Description Get the payment and refunds for an order (owner or staff)
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.PaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/payment [get]
func (h *PaymentHandler) GetByOrder(c *gin.Context) {
	actorID, role, ok := actorContext(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}

	view, err := h.q.GetByOrderID(c.Request.Context(), actorID, role, orderID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrPaymentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Payment not found", nil)
		case errors.Is(err, queries.ErrPaymentAccess):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load payment", nil)
		}
		return
	}

	resp, err := resdto.FromPaymentView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render payment", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Confirm COD collection
// @Description Record cash collected on delivery (staff only)
// @Tags payments
// @Accept json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.ConfirmCODRequest true "Collected amount"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /orders/{id}/payment/cod [post]
func (h *PaymentHandler) ConfirmCOD(c *gin.Context) {
	actorID, role, ok := actorContext(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}
	var req reqdto.ConfirmCODRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	if err := h.cmds.ConfirmCODPayment(c.Request.Context(), actorID, role, orderID, req.CollectedAmount); err != nil {
		abortPaymentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Initiate refund
// @Description Open a refund bounded by the refundable remainder (staff only)
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.InitiateRefundRequest true "Refund request"
// @Success 201 {object} resdto.RefundResultResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /orders/{id}/refunds [post]
func (h *PaymentHandler) InitiateRefund(c *gin.Context) {
	actorID, role, ok := actorContext(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}
	var req reqdto.InitiateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.InitiateRefund(c.Request.Context(), actorID, role, orderID, req.Amount, req.Reason)
	if err != nil {
		abortPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromRefundResult(result))
}

// @Summary Process refund
// @Description Settle a pending refund through the gateway (staff only)
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param refundId path string true "Refund ID"
// @Success 200 {object} resdto.RefundResultResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /orders/{id}/refunds/{refundId}/process [post]
func (h *PaymentHandler) ProcessRefund(c *gin.Context) {
	actorID, role, ok := actorContext(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}
	refundID, err := uuid.Parse(c.Param("refundId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid refund id", nil)
		return
	}

	result, err := h.cmds.ProcessRefund(c.Request.Context(), actorID, role, orderID, refundID)
	if err != nil {
		abortPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRefundResult(result))
}

func abortPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrOrderNotFound),
		errors.Is(err, commands.ErrPaymentNotFound),
		errors.Is(err, commands.ErrRefundNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	case errors.Is(err, commands.ErrOrderNotOwned),
		errors.Is(err, commands.ErrForbiddenForRole):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
	case errors.Is(err, commands.ErrOrderAlreadyPaid),
		errors.Is(err, commands.ErrOrderNotPayable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Order is not payable", nil)
	case errors.Is(err, commands.ErrInvalidSignature):
		httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid signature", nil)
	case errors.Is(err, commands.ErrPaymentNotCaptured),
		errors.Is(err, commands.ErrAmountMismatch),
		errors.Is(err, commands.ErrCODAmountMismatch),
		errors.Is(err, commands.ErrNotCODOrder):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Payment verification failed", nil)
	case errors.Is(err, commands.ErrGatewayFailure):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment gateway error", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Payment operation failed", nil)
	}
}
