package handler

import (
	"strconv"

	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler exposes account administration, the self-service profile edit
// and the audit log.
type UserHandler struct {
	users *service.UserService
	logs  *service.LogEntryService
	auth  *service.AuthService
}

func NewUserHandler(users *service.UserService, logs *service.LogEntryService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, logs: logs, auth: auth}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}

// Get handles GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, user)
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := h.users.CreateUser(c.Request.Context(), adminActor(c), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, user)
}

// Update handles PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := h.users.UpdateUser(c.Request.Context(), adminActor(c), c.Param("id"), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, user)
}

// UpdateProfile handles PUT /api/v1/profile — any logged-in user edits
// their own names and password.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), actor, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, user)
}

// Logs handles GET /api/v1/logs?limit=100
func (h *UserHandler) Logs(c *gin.Context) {
	limit := 100
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}
	entries, err := h.logs.GetRecent(c.Request.Context(), limit)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": entries})
}
