package handler

import (
	"context"
	"net/http"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/shared/actor"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/httpkit"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// SubmitGate runs report submission through the project orchestrator so the
// checklist is checked before the chain starts.
type SubmitGate interface {
	SubmitReport(ctx context.Context, caller domain.Actor, reportID uuid.UUID, expectedStatus string) error
}

// Handler handles HTTP requests for inspection reports.
type Handler struct {
	svc  *service.Service
	val  *validator.Validator
	gate SubmitGate
}

// New creates a new reports handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SetSubmitGate routes POST /reports/:id/submit through gate.
func (h *Handler) SetSubmitGate(gate SubmitGate) {
	h.gate = gate
}

// RegisterProjectRoutes registers routes under /projects/:id/reports.
func (h *Handler) RegisterProjectRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
}

// RegisterRoutes registers routes under /reports.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/submit", h.Submit)
	rg.POST("/:id/verify", h.Verify)
	rg.POST("/:id/approve", h.Approve)
	rg.POST("/:id/reject", h.Reject)
}

// List handles GET /api/v1/projects/:id/reports
func (h *Handler) List(c *gin.Context) {
	projectID, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}
	caller, ok := actor.Must(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), caller, projectID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create handles POST /api/v1/projects/:id/reports
func (h *Handler) Create(c *gin.Context) {
	projectID, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.CreateReportRequest
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

// Get handles GET /api/v1/reports/:id
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

// Update handles PUT /api/v1/reports/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := actor.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateReportRequest
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

	result, err := h.svc.Update(c.Request.Context(), caller, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Submit handles POST /api/v1/reports/:id/submit. Without a gate the route
// refuses to run so a draft checklist can never be skipped.
func (h *Handler) Submit(c *gin.Context) {
	if h.gate == nil {
		httpkit.HandleError(c, apperr.Internal("report submission is not wired to the project orchestrator"))
		return
	}
	h.step(c, func(ctx context.Context, caller domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ReportResponse, error) {
		if err := h.gate.SubmitReport(ctx, caller, id, req.ExpectedStatus); err != nil {
			return transport.ReportResponse{}, err
		}
		return h.svc.Get(ctx, caller, id)
	})
}

// Verify handles POST /api/v1/reports/:id/verify
func (h *Handler) Verify(c *gin.Context) {
	h.step(c, h.svc.Verify)
}

// Approve handles POST /api/v1/reports/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	h.step(c, h.svc.Approve)
}

// Reject handles POST /api/v1/reports/:id/reject
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

type stepFunc func(ctx context.Context, caller domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ReportResponse, error)

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
