package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/history"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table      = "projects"
	entityName = "project"
)

// Project is a building certification case.
type Project struct {
	ID                uuid.UUID
	Name              string
	Address           string
	ApplicationType   string
	IsSpecialFunction bool
	ClientID          *uuid.UUID
	Status            string
	Version           int
	CreatedBy         uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ListParams filters and pages a project listing.
type ListParams struct {
	Statuses []string
	Search   string
	Offset   int
	Limit    int
}

// ListResult is one page of projects.
type ListResult struct {
	Items []Project
	Total int
}

// TransitionParams describes one compare-and-set on a project status.
type TransitionParams struct {
	ID        uuid.UUID
	From      string
	To        string
	ActorID   uuid.UUID
	ActorRole string
	Notes     *string
}

// Repository provides database operations for projects.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new project repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `
	id, name, address, application_type, is_special_function, client_id,
	status, version, created_by, created_at, updated_at`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(
		&p.ID, &p.Name, &p.Address, &p.ApplicationType, &p.IsSpecialFunction, &p.ClientID,
		&p.Status, &p.Version, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create inserts a project in draft.
func (r *Repository) Create(ctx context.Context, p Project) (Project, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	created, err := scanProject(r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, name, address, application_type, is_special_function, client_id, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, 'draft', $7)
		RETURNING`+selectColumns,
		p.ID, p.Name, p.Address, p.ApplicationType, p.IsSpecialFunction, p.ClientID, p.CreatedBy,
	))
	if err != nil {
		return Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return created, nil
}

// GetByID retrieves a project by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx,
		`SELECT`+selectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, apperr.NotFound(entityName + " not found")
	}
	if err != nil {
		return Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// List returns a page of projects, newest first. visibleTo, when set, limits
// the result to projects on which that user holds a team assignment.
func (r *Repository) List(ctx context.Context, params ListParams, visibleTo *uuid.UUID) (ListResult, error) {
	var statuses []string
	if len(params.Statuses) > 0 {
		statuses = params.Statuses
	}
	var search *string
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		search = &pattern
	}

	const where = `
		WHERE ($1::text[] IS NULL OR p.status = ANY($1))
			AND ($2::text IS NULL OR p.name ILIKE $2 OR p.address ILIKE $2)
			AND ($3::uuid IS NULL OR p.client_id = $3 OR EXISTS (
				SELECT 1 FROM team_assignments t WHERE t.project_id = p.id AND t.user_id = $3))`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects p`+where,
		statuses, search, visibleTo).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count projects: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.address, p.application_type, p.is_special_function, p.client_id,
			p.status, p.version, p.created_by, p.created_at, p.updated_at
		FROM projects p`+where+`
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $4 OFFSET $5`,
		statuses, search, visibleTo, params.Limit, params.Offset)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("failed to scan project: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return ListResult{Items: items, Total: total}, nil
}

// Transition moves a project from p.From to p.To and records the change in
// the audit trail within one transaction. A project whose status changed
// since it was read yields a stale transition error.
func (r *Repository) Transition(ctx context.Context, p TransitionParams) (Project, error) {
	var updated Project
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = scanProject(tx.QueryRow(ctx, `
			UPDATE projects
			SET status = $3, version = version + 1, updated_at = now()
			WHERE id = $1 AND status = $2
			RETURNING`+selectColumns, p.ID, p.From, p.To))
		if errors.Is(err, pgx.ErrNoRows) {
			return history.ExplainMiss(ctx, tx, table, entityName, p.ID, p.From)
		}
		if err != nil {
			return fmt.Errorf("failed to update project status: %w", err)
		}

		return history.Record(ctx, tx, history.Entry{
			EntityType: events.EntityProject,
			EntityID:   updated.ID,
			ProjectID:  updated.ID,
			FromStatus: p.From,
			ToStatus:   p.To,
			ActorID:    p.ActorID,
			ActorRole:  p.ActorRole,
			Notes:      p.Notes,
		})
	})
	if err != nil {
		return Project{}, err
	}
	return updated, nil
}
