package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/config"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// PendingInspection is the slice of a schedule event a reminder needs.
type PendingInspection struct {
	EventID      uuid.UUID
	ProjectID    uuid.UUID
	AssigneeID   uuid.UUID
	Title        string
	ScheduleDate time.Time
}

// InspectionSource looks up inspections that are still scheduled. ok is false
// once the event was completed, cancelled or deleted.
type InspectionSource interface {
	PendingInspection(ctx context.Context, eventID uuid.UUID) (PendingInspection, bool, error)
}

// Worker runs the reminder handlers against the asynq queue.
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	inspections InspectionSource
	bus         events.Bus
	log         *logger.Logger
}

// NewWorker builds a worker. Concurrency defaults to 10.
func NewWorker(cfg config.SchedulerConfig, inspections InspectionSource, bus events.Bus, log *logger.Logger) (*Worker, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(conn.opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{conn.queue: 1},
	})

	w := &Worker{
		server:      server,
		mux:         asynq.NewServeMux(),
		inspections: inspections,
		bus:         bus,
		log:         log,
	}
	w.mux.HandleFunc(TaskInspectionReminder, w.handleInspectionReminder)

	return w, nil
}

// Run processes tasks until ctx is cancelled, then drains in-flight work.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("scheduler worker failed to start", "error", err)
		return err
	}

	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func (w *Worker) handleInspectionReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseInspectionReminderPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	eventID, err := uuid.Parse(payload.EventID)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	inspection, ok, err := w.inspections.PendingInspection(ctx, eventID)
	if err != nil {
		return err
	}
	if !ok {
		w.log.Debug("inspection reminder skipped", "event_id", eventID)
		return nil
	}

	if w.bus == nil {
		return nil
	}

	return w.bus.PublishSync(ctx, events.InspectionReminderDue{
		BaseEvent:    events.NewBaseEvent(),
		EventID:      inspection.EventID,
		ProjectID:    inspection.ProjectID,
		AssigneeID:   inspection.AssigneeID,
		Title:        inspection.Title,
		ScheduleDate: inspection.ScheduleDate,
	})
}
