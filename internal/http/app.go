// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"
	"net/http"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/config"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	// Metrics serves the Prometheus registry on /metrics when set.
	Metrics  http.Handler
	Modules  []Module
}
