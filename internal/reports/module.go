// Package reports provides the inspection report approval module.
package reports

import (
	apphttp "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/http"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/handler"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the reports domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new reports module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, roles service.RoleResolver, obs *workflow.Observer) *Module {
	svc := service.New(repository.New(pool), roles, obs)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Service exposes the report reads and submission to the orchestrator through adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetSubmitGate routes report submission through the orchestrator.
func (m *Module) SetSubmitGate(gate handler.SubmitGate) {
	m.handler.SetSubmitGate(gate)
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "reports"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterProjectRoutes(ctx.Protected.Group("/projects/:id/reports"))
	m.handler.RegisterRoutes(ctx.Protected.Group("/reports"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
