package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/history"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table      = "schedule_events"
	entityName = "schedule event"
)

// Event is a dated activity on a project assigned to one team member.
type Event struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	EventType    string
	Title        string
	Description  string
	ScheduleDate time.Time
	EndDate      *time.Time
	AssigneeID   uuid.UUID
	Status       string
	Version      int
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListFilter narrows event listings to a date window.
type ListFilter struct {
	From *time.Time
	To   *time.Time
}

// TransitionParams describes one compare-and-set on an event status.
type TransitionParams struct {
	ID        uuid.UUID
	From      string
	To        string
	ActorID   uuid.UUID
	ActorRole string
}

// InspectionCounts summarizes the inspection events of a project.
type InspectionCounts struct {
	Completed int
	Open      int
}

// Repository provides database operations for schedule events.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new schedule repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `
	id, project_id, event_type, title, description, schedule_date, end_date,
	assignee_id, status, version, created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.ProjectID, &e.EventType, &e.Title, &e.Description, &e.ScheduleDate, &e.EndDate,
		&e.AssigneeID, &e.Status, &e.Version, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func collect(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()
	items := make([]Event, 0)
	for rows.Next() {
		item, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule event: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule events: %w", err)
	}
	return items, nil
}

// Create inserts a scheduled event.
func (r *Repository) Create(ctx context.Context, e Event) (Event, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	created, err := scanEvent(r.pool.QueryRow(ctx, `
		INSERT INTO schedule_events (
			id, project_id, event_type, title, description, schedule_date, end_date,
			assignee_id, status, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'scheduled', $9)
		RETURNING`+selectColumns,
		e.ID, e.ProjectID, e.EventType, e.Title, e.Description, e.ScheduleDate, e.EndDate,
		e.AssigneeID, e.CreatedBy,
	))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Event{}, apperr.NotFound("project not found")
		}
		return Event{}, fmt.Errorf("failed to create schedule event: %w", err)
	}
	return created, nil
}

// GetByID retrieves an event by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT`+selectColumns+` FROM schedule_events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, apperr.NotFound(entityName + " not found")
	}
	if err != nil {
		return Event{}, fmt.Errorf("failed to get schedule event: %w", err)
	}
	return e, nil
}

// ListByProject returns the events of a project ordered by date.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+selectColumns+` FROM schedule_events
		WHERE project_id = $1
			AND ($2::timestamptz IS NULL OR schedule_date >= $2)
			AND ($3::timestamptz IS NULL OR schedule_date < $3)
		ORDER BY schedule_date, id`, projectID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule events: %w", err)
	}
	return collect(rows)
}

// ListByAssignee returns the events assigned to a user across projects.
func (r *Repository) ListByAssignee(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+selectColumns+` FROM schedule_events
		WHERE assignee_id = $1
			AND ($2::timestamptz IS NULL OR schedule_date >= $2)
			AND ($3::timestamptz IS NULL OR schedule_date < $3)
		ORDER BY schedule_date, id`, userID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned schedule events: %w", err)
	}
	return collect(rows)
}

// ProjectStatus returns the workflow status of the parent project.
func (r *Repository) ProjectStatus(ctx context.Context, projectID uuid.UUID) (string, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM projects WHERE id = $1`, projectID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.NotFound("project not found")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get project status: %w", err)
	}
	return status, nil
}

// CountInspections counts completed and still open inspection events.
func (r *Repository) CountInspections(ctx context.Context, projectID uuid.UUID) (InspectionCounts, error) {
	var counts InspectionCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status IN ('scheduled', 'in_progress'))
		FROM schedule_events
		WHERE project_id = $1 AND event_type = 'inspection'`, projectID,
	).Scan(&counts.Completed, &counts.Open)
	if err != nil {
		return InspectionCounts{}, fmt.Errorf("failed to count inspections: %w", err)
	}
	return counts, nil
}

// Transition moves an event from p.From to p.To and records the change in
// the audit trail within one transaction.
func (r *Repository) Transition(ctx context.Context, p TransitionParams) (Event, error) {
	var updated Event
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = scanEvent(tx.QueryRow(ctx, `
			UPDATE schedule_events
			SET status = $3, version = version + 1, updated_at = now()
			WHERE id = $1 AND status = $2
			RETURNING`+selectColumns, p.ID, p.From, p.To))
		if errors.Is(err, pgx.ErrNoRows) {
			return history.ExplainMiss(ctx, tx, table, entityName, p.ID, p.From)
		}
		if err != nil {
			return fmt.Errorf("failed to update schedule event status: %w", err)
		}

		return history.Record(ctx, tx, history.Entry{
			EntityType: events.EntityScheduleEvent,
			EntityID:   updated.ID,
			ProjectID:  updated.ProjectID,
			FromStatus: p.From,
			ToStatus:   p.To,
			ActorID:    p.ActorID,
			ActorRole:  p.ActorRole,
		})
	})
	if err != nil {
		return Event{}, err
	}
	return updated, nil
}

// Delete removes an event unless it has been completed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM schedule_events WHERE id = $1 AND status <> 'completed'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule event: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrTerminalState(entityName, "completed")
	}
	return nil
}
