package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/adapters"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	apphttp "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/http"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/http/router"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/notification"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects"
	projectsservice "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/scheduler"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/config"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/db"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/metrics"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if cfg.RunMigrations {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	val := validator.New()
	recorder := metrics.New()
	observer := workflow.NewObserver(eventBus, recorder, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	teamsModule := teams.NewModule(pool, val)
	roles := teamsModule.Service()

	checklistModule := checklist.NewModule(pool, val, roles, observer)
	reportsModule := reports.NewModule(pool, val, roles, observer)
	scheduleModule := schedule.NewModule(pool, val, roles, observer, log)

	projectsModule := projects.NewModule(pool, val, nil, projectsservice.Ports{
		Roles:     roles,
		Checklist: adapters.NewChecklistReader(checklistModule.Service()),
		Reports:   adapters.NewReportGateway(reportsModule.Service()),
		Schedule:  adapters.NewScheduleReader(scheduleModule.Service()),
	}, observer)

	// Report submission over HTTP runs through the orchestrator's checklist gate.
	reportsModule.SetSubmitGate(projectsModule.Service())

	if cfg.IsRedisEnabled() {
		closeRedis := initEventStream(cfg, eventBus, log)
		defer closeRedis()

		reminderClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize reminder scheduler client", "error", err)
		} else {
			defer func() { _ = reminderClient.Close() }()
			scheduleModule.Service().SetReminderScheduler(reminderClient, cfg.GetInspectionReminderLead())
		}
	} else {
		log.Warn("REDIS_URL not configured; workflow event stream and inspection reminders disabled")
	}

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Metrics:  recorder.Handler(),
		Modules: []apphttp.Module{
			teamsModule,
			projectsModule,
			checklistModule,
			reportsModule,
			scheduleModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func initEventStream(cfg config.StreamConfig, bus events.Bus, log *logger.Logger) func() {
	rdb, err := notification.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize workflow event stream", "error", err)
		return func() {}
	}
	notification.New(rdb, cfg, log).RegisterHandlers(bus)
	return func() { _ = rdb.Close() }
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
