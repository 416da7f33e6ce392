package api

import (
	"net/http"

	resdto "aurum-commerce/internal/handler/dto/response"
	"aurum-commerce/internal/handler/httperr"
	"aurum-commerce/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	sweep commands.SweepCommands
}

func NewAdminHandler(sweep commands.SweepCommands) *AdminHandler {
	return &AdminHandler{sweep: sweep}
}

// @Summary Run expiry sweep
// @Description Expire stale vouchers and gift cards and soft-delete idle carts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/sweeps/expiry [post]
func (h *AdminHandler) RunExpirySweep(c *gin.Context) {
	result, err := h.sweep.RunExpirySweep(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Sweep failed", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSweepResult(result))
}
