package handler

import (
	"errors"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles all HTTP handlers for wiring.
type Handlers struct {
	Auth      *AuthHandler
	Card      *CardHandler
	Workshop  *WorkshopHandler
	User      *UserHandler
	Schedule  *ScheduleHandler
	Dashboard *DashboardHandler
}

// NewHandlers creates the handler set.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(svc.Auth),
		Card:      NewCardHandler(svc.Card, svc.Auth),
		Workshop:  NewWorkshopHandler(svc.Workshop, svc.WorkCenter),
		User:      NewUserHandler(svc.User, svc.LogEntry, svc.Auth),
		Schedule:  NewScheduleHandler(svc.Schedule),
		Dashboard: NewDashboardHandler(svc.Card, svc.Auth),
	}
}

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success responds 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created responds 201.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error responds with an app code whose leading digits are the HTTP status.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict reports an operation rejected by the card's current status.
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID reads the authenticated user id set by the JWT middleware.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// serviceError maps a service failure onto the response taxonomy.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrWorkshopNotFound),
		errors.Is(err, service.ErrWorkCenterNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrScheduleNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidCardStatus):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// resolveActor loads the full account for the authenticated user. On failure
// the response is already written and nil is returned.
func resolveActor(c *gin.Context, auth *service.AuthService) *entity.User {
	userID := GetUserID(c)
	if userID == "" {
		Unauthorized(c, "not authenticated")
		return nil
	}
	actor, err := auth.ResolveActor(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			Unauthorized(c, "unknown account")
		} else {
			InternalError(c, err.Error())
		}
		return nil
	}
	return actor
}
