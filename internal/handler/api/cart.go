package api

import (
	"errors"
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

type CartHandler struct {
	cmds commands.CartCommands
	q    queries.CartQueries
}

func NewCartHandler(cmds commands.CartCommands, q queries.CartQueries) *CartHandler {
	return &CartHandler{cmds: cmds, q: q}
}

// @Summary Get cart
// @Description Get the current user's cart with recomputed totals
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	h.respondWithCart(c, http.StatusOK, userID)
}

// @Summary Add cart item
// @Description Add a catalog variant to the cart, or bump its quantity
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AddCartItemRequest true "Add item request"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	var req reqdto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	if err := h.cmds.AddItem(c.Request.Context(), userID.String(), req.ToCommand()); err != nil {
		abortCartError(c, err)
		return
	}
	h.respondWithCart(c, http.StatusOK, userID)
}

// @Summary Update cart item quantity
// @Description Set the quantity of a cart line
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item ID"
// @Param request body reqdto.UpdateCartItemRequest true "Update quantity request"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart/items/{id} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid item id", nil)
		return
	}
	var req reqdto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	if err := h.cmds.UpdateItemQuantity(c.Request.Context(), userID.String(), itemID, req.Quantity); err != nil {
		abortCartError(c, err)
		return
	}
	h.respondWithCart(c, http.StatusOK, userID)
}

// @Summary Remove cart item
// @Description Remove a line from the cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid item id", nil)
		return
	}

	if err := h.cmds.RemoveItem(c.Request.Context(), userID.String(), itemID); err != nil {
		abortCartError(c, err)
		return
	}
	h.respondWithCart(c, http.StatusOK, userID)
}

// @Summary Apply discount
// @Description Apply a coupon, voucher or gift card to the cart
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ApplyDiscountRequest true "Apply discount request"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/discounts [post]
func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}
	var req reqdto.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	if err := h.cmds.ApplyDiscount(c.Request.Context(), userID.String(), userID, req.Kind, req.TrimmedCode()); err != nil {
		abortCartError(c, err)
		return
	}
	h.respondWithCart(c, http.StatusOK, userID)
}

// @Summary Remove discount
// @Description Remove the applied discount of the given kind from the cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Discount kind (coupon, voucher, gift_card)"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart/discounts/{kind} [delete]
func (h *CartHandler) RemoveDiscount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing user context"), "Unauthorized", nil)
		return
	}

	if err := h.cmds.RemoveDiscount(c.Request.Context(), userID.String(), c.Param("kind")); err != nil {
		abortCartError(c, err)
		return
	}
	h.respondWithCart(c, http.StatusOK, userID)
}

func (h *CartHandler) respondWithCart(c *gin.Context, status int, userID uuid.UUID) {
	view, err := h.q.GetByOwner(c.Request.Context(), userID.String())
	if err != nil {
		if errors.Is(err, queries.ErrCartNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Cart is empty", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load cart", nil)
		return
	}
	resp, err := resdto.FromCartView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to render cart", nil)
		return
	}
	c.JSON(status, resp)
}

func abortCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrVariantNotFound),
		errors.Is(err, commands.ErrCartNotFound),
		errors.Is(err, commands.ErrCartItemNotFound),
		errors.Is(err, commands.ErrDiscountNotFound),
		errors.Is(err, commands.ErrDiscountNotApplied):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	case errors.Is(err, commands.ErrInsufficientStock),
		errors.Is(err, commands.ErrDiscountSlotTaken):
		httperr.AbortWithError(c, http.StatusConflict, err, "Conflict", nil)
	case errors.Is(err, commands.ErrVariantUnavailable),
		errors.Is(err, commands.ErrDiscountNotEligible),
		errors.Is(err, commands.ErrEmptyCart):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Not eligible", nil)
	default:
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Cart operation failed", nil)
	}
}
