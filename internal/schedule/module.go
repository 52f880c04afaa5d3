// Package schedule provides the project schedule module: inspections,
// meetings, deadlines and document verification slots.
package schedule

import (
	apphttp "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/http"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/handler"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the schedule domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new schedule module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, team service.TeamLookup, obs *workflow.Observer, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), team, obs, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Service exposes inspection queries to the orchestrator and the reminder worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "schedule"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterProjectRoutes(ctx.Protected.Group("/projects/:id/schedule"))
	m.handler.RegisterRoutes(ctx.Protected.Group("/schedule"))
	ctx.Protected.GET("/me/schedule", m.handler.Mine)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
