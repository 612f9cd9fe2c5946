package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reportit-app/reportit-api/internal/service"
	"github.com/reportit-app/reportit-api/pkg/response"
)

// BadgeHandler serves the static badge definition table.
type BadgeHandler struct {
	service *service.BadgeService
}

// NewBadgeHandler creates a new handler.
func NewBadgeHandler(svc *service.BadgeService) *BadgeHandler {
	return &BadgeHandler{service: svc}
}

// List godoc
// @Summary List badge definitions
// @Description The fixed achievement table clients render against
// @Tags Badges
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /badges [get]
func (h *BadgeHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Definitions(), nil)
}
