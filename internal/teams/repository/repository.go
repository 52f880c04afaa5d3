package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Assignment is a (project, user, role) team membership row.
type Assignment struct {
	ProjectID  uuid.UUID
	UserID     uuid.UUID
	Role       string
	AssignedBy uuid.UUID
	CreatedAt  time.Time
}

// Repository provides database operations for team assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new team assignment repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an assignment. An identical assignment is a conflict.
func (r *Repository) Create(ctx context.Context, a Assignment) (Assignment, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO team_assignments (project_id, user_id, role, assigned_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		a.ProjectID, a.UserID, a.Role, a.AssignedBy,
	).Scan(&a.CreatedAt)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return Assignment{}, apperr.Conflict("user already holds this role on the project")
		case db.IsForeignKeyViolation(err):
			return Assignment{}, apperr.NotFound("project not found")
		}
		return Assignment{}, fmt.Errorf("failed to create team assignment: %w", err)
	}
	return a, nil
}

// Delete removes one assignment.
func (r *Repository) Delete(ctx context.Context, projectID, userID uuid.UUID, role string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM team_assignments WHERE project_id = $1 AND user_id = $2 AND role = $3`,
		projectID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to delete team assignment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("team assignment not found")
	}
	return nil
}

// ListByProject returns the team of a project.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Assignment, error) {
	return r.list(ctx, `
		SELECT project_id, user_id, role, assigned_by, created_at
		FROM team_assignments WHERE project_id = $1
		ORDER BY role, created_at`, projectID)
}

// ListByUser returns every assignment a user holds.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Assignment, error) {
	return r.list(ctx, `
		SELECT project_id, user_id, role, assigned_by, created_at
		FROM team_assignments WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
}

// RolesOn returns the roles userID holds on projectID.
func (r *Repository) RolesOn(ctx context.Context, projectID, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role FROM team_assignments WHERE project_id = $1 AND user_id = $2 ORDER BY role`,
		projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team roles: %w", err)
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan team role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *Repository) list(ctx context.Context, query string, arg uuid.UUID) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list team assignments: %w", err)
	}
	defer rows.Close()

	items := make([]Assignment, 0)
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ProjectID, &a.UserID, &a.Role, &a.AssignedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team assignment: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team assignments: %w", err)
	}
	return items, nil
}
