package handler

import (
	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/middleware"
	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/gin-gonic/gin"
)

// WorkshopHandler exposes workshop and work center administration.
type WorkshopHandler struct {
	workshops   *service.WorkshopService
	workCenters *service.WorkCenterService
}

func NewWorkshopHandler(workshops *service.WorkshopService, workCenters *service.WorkCenterService) *WorkshopHandler {
	return &WorkshopHandler{workshops: workshops, workCenters: workCenters}
}

// adminActor builds the acting identity from the token claims. Admin routes
// never need workshop assignments, so no account lookup is done here.
func adminActor(c *gin.Context) *entity.User {
	claims, _ := c.Get("claims")
	if jc, ok := claims.(*middleware.JWTClaims); ok {
		return &entity.User{ID: jc.UserID, Username: jc.Username, Role: jc.Role}
	}
	return &entity.User{ID: GetUserID(c)}
}

// ListWorkshops handles GET /api/v1/workshops?active=true
func (h *WorkshopHandler) ListWorkshops(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	workshops, err := h.workshops.ListWorkshops(c.Request.Context(), activeOnly)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": workshops})
}

// GetWorkshop handles GET /api/v1/workshops/:id
func (h *WorkshopHandler) GetWorkshop(c *gin.Context) {
	workshop, err := h.workshops.GetWorkshop(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, workshop)
}

// CreateWorkshop handles POST /api/v1/workshops
func (h *WorkshopHandler) CreateWorkshop(c *gin.Context) {
	var req service.WorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	workshop, err := h.workshops.CreateWorkshop(c.Request.Context(), adminActor(c), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, workshop)
}

// UpdateWorkshop handles PUT /api/v1/workshops/:id
func (h *WorkshopHandler) UpdateWorkshop(c *gin.Context) {
	var req service.WorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	workshop, err := h.workshops.UpdateWorkshop(c.Request.Context(), adminActor(c), c.Param("id"), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, workshop)
}

// ListWorkCenters handles GET /api/v1/work-centers?workshop_id=...
func (h *WorkshopHandler) ListWorkCenters(c *gin.Context) {
	centers, err := h.workCenters.ListWorkCenters(c.Request.Context(), c.Query("workshop_id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": centers})
}

// GetWorkCenter handles GET /api/v1/work-centers/:id
func (h *WorkshopHandler) GetWorkCenter(c *gin.Context) {
	wc, err := h.workCenters.GetWorkCenter(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, wc)
}

// CreateWorkCenter handles POST /api/v1/work-centers
func (h *WorkshopHandler) CreateWorkCenter(c *gin.Context) {
	var req service.WorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	wc, err := h.workCenters.CreateWorkCenter(c.Request.Context(), adminActor(c), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, wc)
}

// UpdateWorkCenter handles PUT /api/v1/work-centers/:id
func (h *WorkshopHandler) UpdateWorkCenter(c *gin.Context) {
	var req service.WorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	wc, err := h.workCenters.UpdateWorkCenter(c.Request.Context(), adminActor(c), c.Param("id"), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, wc)
}
