// Package projects provides the project registry and the workflow
// orchestrator that moves projects through the certification phases.
package projects

import (
	apphttp "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/http"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/handler"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/history"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the projects domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new projects module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, engine *domain.Engine, ports service.Ports, obs *workflow.Observer) *Module {
	svc := service.New(repository.New(pool), history.New(pool), engine, ports, obs)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Service exposes the orchestrator, used as the report submission gate.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "projects"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/projects"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
