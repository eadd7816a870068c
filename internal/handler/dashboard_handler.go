package handler

import (
	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler exposes the per-status card counts for the landing page.
type DashboardHandler struct {
	cards *service.CardService
	auth  *service.AuthService
}

func NewDashboardHandler(cards *service.CardService, auth *service.AuthService) *DashboardHandler {
	return &DashboardHandler{cards: cards, auth: auth}
}

// Counts handles GET /api/v1/dashboard/counts
// Counts are scoped like lists: admins see plant-wide numbers, everyone else
// only their workshops.
func (h *DashboardHandler) Counts(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	counts, err := h.cards.CountCards(c.Request.Context(), actor)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, counts)
}
