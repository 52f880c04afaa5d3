package handler

import (
	"net/http"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/shared/actor"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/httpkit"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for project teams.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new teams handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterProjectRoutes registers routes under /projects/:id/team.
func (h *Handler) RegisterProjectRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Assign)
	rg.DELETE("/:userId/:role", h.Remove)
}

// List handles GET /api/v1/projects/:id/team
func (h *Handler) List(c *gin.Context) {
	projectID, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := h.svc.ListByProject(c.Request.Context(), caller, projectID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Assign handles POST /api/v1/projects/:id/team
func (h *Handler) Assign(c *gin.Context) {
	projectID, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := h.svc.Assign(c.Request.Context(), caller, projectID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Remove handles DELETE /api/v1/projects/:id/team/:userId/:role
func (h *Handler) Remove(c *gin.Context) {
	projectID, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := actor.ParamUUID(c, "userId")
	if !ok {
		return
	}

	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Remove(c.Request.Context(), caller, projectID, userID, c.Param("role"))) {
		return
	}
	httpkit.NoContent(c)
}

// Mine handles GET /api/v1/me/assignments
func (h *Handler) Mine(c *gin.Context) {
	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := h.svc.ListForUser(c.Request.Context(), caller.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
