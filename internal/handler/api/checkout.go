package api

import (
	"errors"
	"net/http"

	reqdto "aurum-commerce/internal/handler/dto/request"
	resdto "aurum-commerce/internal/handler/dto/response"
	"aurum-commerce/internal/handler/httperr"
	"aurum-commerce/internal/handler/middleware"
	"aurum-commerce/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	cmds commands.CheckoutCommands
}

func NewCheckoutHandler(cmds commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{cmds: cmds}
}

// @Summary Checkout
// @Description Convert the current cart into an order, reserving stock and
// @Description consuming applied discounts
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CheckoutRequest true "Checkout request"
// @Success 201 {object} resdto.CheckoutResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	var req reqdto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.Checkout(c.Request.Context(), userID, req.ToCommand())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrCartNotFound),
			errors.Is(err, commands.ErrEmptyCart):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Cart is empty", nil)
		case errors.Is(err, commands.ErrCartExpired):
			httperr.AbortWithError(c, http.StatusGone, err, "Cart has expired", nil)
		case errors.Is(err, commands.ErrStockConflict):
			httperr.AbortWithError(c, http.StatusConflict, err, "Insufficient stock", nil)
		case errors.Is(err, commands.ErrDiscountNoLongerValid):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "An applied discount is no longer valid", nil)
		case errors.Is(err, commands.ErrVariantUnavailable):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "An item is no longer available", nil)
		case errors.Is(err, commands.ErrInternalInconsistency):
			// Stock compensation failed; an operator has to reconcile.
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Checkout could not be completed", nil)
		default:
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Checkout failed", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCheckoutResult(result))
}
