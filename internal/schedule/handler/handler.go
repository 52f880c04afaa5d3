package handler

import (
	"net/http"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/shared/actor"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/httpkit"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for schedule events.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new schedule handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterProjectRoutes registers routes under /projects/:id/schedule.
func (h *Handler) RegisterProjectRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
}

// RegisterRoutes registers routes under /schedule.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.DELETE("/:id", h.Delete)
}

// List handles GET /api/v1/projects/:id/schedule
func (h *Handler) List(c *gin.Context) {
	projectID, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), caller, projectID, filter)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Mine handles GET /api/v1/me/schedule
func (h *Handler) Mine(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := h.svc.ListMine(c.Request.Context(), caller, filter)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create handles POST /api/v1/projects/:id/schedule
func (h *Handler) Create(c *gin.Context) {
	projectID, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.CreateEventRequest
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

	result, err := h.svc.Create(c.Request.Context(), caller, projectID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateStatus handles PATCH /api/v1/schedule/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
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

	result, err := h.svc.UpdateStatus(c.Request.Context(), caller, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/schedule/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}
	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), caller, id)) {
		return
	}
	httpkit.NoContent(c)
}

func bindFilter(c *gin.Context) (repository.ListFilter, bool) {
	var req transport.ListEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return repository.ListFilter{}, false
	}
	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "to must be after from")
		return repository.ListFilter{}, false
	}
	return repository.ListFilter{From: req.From, To: req.To}, true
}
