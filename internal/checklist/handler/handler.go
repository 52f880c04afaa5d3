package handler

import (
	"context"
	"net/http"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/shared/actor"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/httpkit"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for checklist responses.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new checklist handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterProjectRoutes registers routes under /projects/:id/checklist.
func (h *Handler) RegisterProjectRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
}

// RegisterRoutes registers routes under /checklist.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/:id", h.Save)
	rg.POST("/:id/submit", h.Submit)
	rg.POST("/:id/approve", h.Approve)
	rg.POST("/:id/reject", h.Reject)
	rg.POST("/:id/reopen", h.Reopen)
}

// List handles GET /api/v1/projects/:id/checklist
func (h *Handler) List(c *gin.Context) {
	projectID, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.ListResponsesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var filter repository.ListFilter
	if req.InspectionID != "" {
		id := uuid.MustParse(req.InspectionID)
		filter.InspectionID = &id
	}
	if req.Status != "" {
		filter.Status = &req.Status
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

// Create handles POST /api/v1/projects/:id/checklist
func (h *Handler) Create(c *gin.Context) {
	projectID, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.CreateResponseRequest
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

// Save handles PUT /api/v1/checklist/:id
func (h *Handler) Save(c *gin.Context) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.SaveResponseRequest
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

	result, err := h.svc.Save(c.Request.Context(), caller, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Submit handles POST /api/v1/checklist/:id/submit
func (h *Handler) Submit(c *gin.Context) {
	h.step(c, h.svc.Submit)
}

// Approve handles POST /api/v1/checklist/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	h.step(c, h.svc.Approve)
}

// Reopen handles POST /api/v1/checklist/:id/reopen
func (h *Handler) Reopen(c *gin.Context) {
	h.step(c, h.svc.Reopen)
}

// Reject handles POST /api/v1/checklist/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.RejectRequest
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

	result, err := h.svc.Reject(c.Request.Context(), caller, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

type stepFunc func(ctx context.Context, caller domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ResponseView, error)

// step runs a body-optional transition endpoint.
func (h *Handler) step(c *gin.Context, fn stepFunc) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.TransitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), caller, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
