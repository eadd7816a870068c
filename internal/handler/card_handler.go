package handler

import (
	"fmt"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/gin-gonic/gin"
)

// CardHandler exposes the card lifecycle.
type CardHandler struct {
	cards *service.CardService
	auth  *service.AuthService
}

func NewCardHandler(cards *service.CardService, auth *service.AuthService) *CardHandler {
	return &CardHandler{cards: cards, auth: auth}
}

// Create handles POST /api/v1/cards
func (h *CardHandler) Create(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	var req service.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	view, err := h.cards.CreateCard(c.Request.Context(), actor, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, view)
}

// List handles GET /api/v1/cards?bucket=created|extended|closed|archived|all
func (h *CardHandler) List(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	bucket := c.DefaultQuery("bucket", service.BucketAll)
	views, err := h.cards.ListCards(c.Request.Context(), actor, bucket)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"items": views})
}

// Get handles GET /api/v1/cards/:id
func (h *CardHandler) Get(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	view, err := h.cards.GetCard(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, view)
}

// Extend handles POST /api/v1/cards/:id/extend
func (h *CardHandler) Extend(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	var req service.ExtendCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	view, err := h.cards.ExtendCard(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, view)
}

// Close handles POST /api/v1/cards/:id/close
func (h *CardHandler) Close(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	view, err := h.cards.CloseCard(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, view)
}

// Archive handles POST /api/v1/cards/:id/archive
func (h *CardHandler) Archive(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	view, err := h.cards.ArchiveCard(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, view)
}

// Abilities handles GET /api/v1/cards/:id/abilities
// Always 200; a missing or invisible card simply reports every flag false.
func (h *CardHandler) Abilities(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	Success(c, h.cards.Abilities(c.Request.Context(), actor, c.Param("id")))
}

// ExportArchive handles GET /api/v1/cards/archive/export
// Streams the archived cards visible to the actor as an xlsx download.
func (h *CardHandler) ExportArchive(c *gin.Context) {
	actor := resolveActor(c, h.auth)
	if actor == nil {
		return
	}
	f, err := h.cards.ExportArchive(c.Request.Context(), actor)
	if err != nil {
		serviceError(c, err)
		return
	}
	filename := fmt.Sprintf("archive-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "export failed: "+err.Error())
	}
}
