package handlers

import (
	"net/http"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type QuotaHandler struct {
	quotaService *services.QuotaService
	userService  *services.UserService
}

func NewQuotaHandler(quotaService *services.QuotaService, userService *services.UserService) *QuotaHandler {
	return &QuotaHandler{quotaService: quotaService, userService: userService}
}

// GetQuota godoc
// @Summary      Remaining attempts today
// @Description  Attempts used and left in a mode for the current UTC day. limit and remaining are null for premium users.
// @Tags         quota
// @Produce      json
// @Security     BearerAuth
// @Param        mode query string false "training (default) or exam"
// @Success      200 {object} services.Quota
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/quota [get]
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	mode := c.DefaultQuery("mode", models.ModeTraining)

	user, err := h.userService.Get(c.Request.Context(), c.GetUint("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	quota, err := h.quotaService.GetRemaining(c.Request.Context(), user, mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quota)
}
