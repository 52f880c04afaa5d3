package handler

import (
	"net/http"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/shared/actor"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/httpkit"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for projects.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new projects handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers routes under /projects.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/history", h.History)
	rg.GET("/:id/transitions", h.AvailableTransitions)
	rg.POST("/:id/transitions", h.RequestTransition)
}

// List handles GET /api/v1/projects
func (h *Handler) List(c *gin.Context) {
	var req transport.ListProjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
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

	result, err := h.svc.List(c.Request.Context(), caller, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create handles POST /api/v1/projects
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateProjectRequest
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

	result, err := h.svc.Create(c.Request.Context(), caller, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Get handles GET /api/v1/projects/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}
	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), caller, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// History handles GET /api/v1/projects/:id/history
func (h *Handler) History(c *gin.Context) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}
	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := h.svc.History(c.Request.Context(), caller, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AvailableTransitions handles GET /api/v1/projects/:id/transitions
func (h *Handler) AvailableTransitions(c *gin.Context) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}
	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := h.svc.AvailableTransitions(c.Request.Context(), caller, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RequestTransition handles POST /api/v1/projects/:id/transitions
func (h *Handler) RequestTransition(c *gin.Context) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.TransitionRequest
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

	result, err := h.svc.RequestTransition(c.Request.Context(), id, req.Status, caller, service.TransitionContext{
		Notes:          req.Notes,
		ExpectedStatus: req.ExpectedStatus,
		RetryOnStale:   req.RetryOnStale,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
