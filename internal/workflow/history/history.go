// Package history stores the audit trail of committed workflow transitions.
// Writers call Record inside the transaction that performs the status
// compare-and-set so a history row exists exactly when the change committed.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one committed status change.
type Entry struct {
	ID         uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	ProjectID  uuid.UUID
	FromStatus string
	ToStatus   string
	ActorID    uuid.UUID
	ActorRole  string
	Notes      *string
	CreatedAt  time.Time
}

// Record inserts e using q, which is normally the caller's transaction.
func Record(ctx context.Context, q db.DBTX, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := q.Exec(ctx, `
		INSERT INTO workflow_transitions (
			id, entity_type, entity_id, project_id, from_status, to_status,
			actor_id, actor_role, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.EntityType, e.EntityID, e.ProjectID, e.FromStatus, e.ToStatus,
		e.ActorID, e.ActorRole, e.Notes, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record %s transition: %w", e.EntityType, err)
	}
	return nil
}

// Repository reads the audit trail.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a history repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByProject returns every transition recorded for a project and its
// sub-workflow entities, oldest first.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, project_id, from_status, to_status,
			actor_id, actor_role, notes, created_at
		FROM workflow_transitions
		WHERE project_id = $1
		ORDER BY created_at ASC, id ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow transitions: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.ProjectID, &e.FromStatus, &e.ToStatus,
			&e.ActorID, &e.ActorRole, &e.Notes, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workflow transition: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflow transitions: %w", err)
	}
	return entries, nil
}
