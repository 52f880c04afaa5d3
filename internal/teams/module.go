// Package teams provides the project team assignment module.
package teams

import (
	apphttp "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/http"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/handler"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the teams domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new teams module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	svc := service.New(repository.New(pool))
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Service exposes the role lookup to other modules through adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "teams"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterProjectRoutes(ctx.Protected.Group("/projects/:id/team"))
	ctx.Protected.GET("/me/assignments", m.handler.Mine)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
