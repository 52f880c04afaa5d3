// Package checklist provides the inspection checklist approval module.
package checklist

import (
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist/handler"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist/service"
	apphttp "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/http"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the checklist domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new checklist module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, roles service.RoleResolver, obs *workflow.Observer) *Module {
	svc := service.New(repository.New(pool), roles, obs)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Service exposes the completeness query to the orchestrator through adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "checklist"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterProjectRoutes(ctx.Protected.Group("/projects/:id/checklist"))
	m.handler.RegisterRoutes(ctx.Protected.Group("/checklist"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
