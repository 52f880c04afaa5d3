package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/adapters"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/notification"
	schedulerepo "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/repository"
	scheduleservice "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/scheduler"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/config"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/db"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	rdb, err := notification.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize workflow event stream", "error", err)
		panic("failed to initialize workflow event stream: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()
	notification.New(rdb, cfg, log).RegisterHandlers(eventBus)

	// Read-only use of the schedule service; reminders never transition events.
	scheduleSvc := scheduleservice.New(schedulerepo.New(pool), nil, nil, log)

	worker, err := scheduler.NewWorker(cfg, adapters.NewInspectionReminderSource(scheduleSvc), eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("scheduler stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("scheduler stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
