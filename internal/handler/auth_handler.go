package handler

import (
	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler exposes login and the current-account endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	Success(c, actor)
}
