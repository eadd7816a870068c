package handler

import (
	"github.com/SrebrinSharbanov/ControlCards/internal/schedule"
	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/gin-gonic/gin"
)

// ScheduleHandler exposes MES work-schedule lookups and management.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// List handles GET /api/v1/schedules?work_center=110&date=2026-08-28&shift=FIRST
func (h *ScheduleHandler) List(c *gin.Context) {
	workCenter := c.Query("work_center")
	date := c.Query("date")
	shift := c.Query("shift")
	schedules, err := h.schedules.GetSchedules(c.Request.Context(), workCenter, date, shift)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"items": schedules})
}

// Get handles GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	ws, err := h.schedules.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, ws)
}

// Create handles POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req schedule.WorkSchedule
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ws, err := h.schedules.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, ws)
}

// Update handles PUT /api/v1/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req schedule.WorkSchedule
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ws, err := h.schedules.UpdateSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, ws)
}

// Delete handles DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.DeleteSchedule(c.Request.Context(), c.Param("id")); err != nil {
		serviceError(c, err)
		return
	}
	Success(c, nil)
}
