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
	table      = "inspection_reports"
	entityName = "report"
)

// Report is an inspection report moving through the approval chain.
type Report struct {
	ID             uuid.UUID
	ProjectID      uuid.UUID
	InspectionID   *uuid.UUID
	Title          string
	Content        string
	Status         string
	DrafterID      uuid.UUID
	RejectionNotes *string
	RejectedBy     *uuid.UUID
	VerifiedBy     *uuid.UUID
	ApprovedBy     *uuid.UUID
	ApprovedAt     *time.Time
	CompletedBy    *uuid.UUID
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TransitionParams describes one compare-and-set on a report status.
type TransitionParams struct {
	ID        uuid.UUID
	From      string
	To        string
	ActorID   uuid.UUID
	ActorRole string
	Notes     *string
}

// Repository provides database operations for inspection reports.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new report repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `
	id, project_id, inspection_id, title, content, status, drafter_id,
	rejection_notes, rejected_by, verified_by, approved_by, approved_at, completed_by,
	version, created_at, updated_at`

func scanReport(row pgx.Row) (Report, error) {
	var r Report
	err := row.Scan(
		&r.ID, &r.ProjectID, &r.InspectionID, &r.Title, &r.Content, &r.Status, &r.DrafterID,
		&r.RejectionNotes, &r.RejectedBy, &r.VerifiedBy, &r.ApprovedBy, &r.ApprovedAt, &r.CompletedBy,
		&r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create inserts a draft report.
func (r *Repository) Create(ctx context.Context, rep Report) (Report, error) {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}

	created, err := scanReport(r.pool.QueryRow(ctx, `
		INSERT INTO inspection_reports (id, project_id, inspection_id, title, content, status, drafter_id)
		VALUES ($1, $2, $3, $4, $5, 'draft', $6)
		RETURNING`+selectColumns,
		rep.ID, rep.ProjectID, rep.InspectionID, rep.Title, rep.Content, rep.DrafterID,
	))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Report{}, apperr.NotFound("project or inspection not found")
		}
		return Report{}, fmt.Errorf("failed to create report: %w", err)
	}
	return created, nil
}

// GetByID retrieves a report by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Report, error) {
	rep, err := scanReport(r.pool.QueryRow(ctx,
		`SELECT`+selectColumns+` FROM inspection_reports WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, apperr.NotFound(entityName + " not found")
	}
	if err != nil {
		return Report{}, fmt.Errorf("failed to get report: %w", err)
	}
	return rep, nil
}

// Latest returns the most recently created report of a project.
func (r *Repository) Latest(ctx context.Context, projectID uuid.UUID) (Report, error) {
	rep, err := scanReport(r.pool.QueryRow(ctx, `
		SELECT`+selectColumns+` FROM inspection_reports
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, projectID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, apperr.NotFound("project has no report")
	}
	if err != nil {
		return Report{}, fmt.Errorf("failed to get latest report: %w", err)
	}
	return rep, nil
}

// ListByProject returns the reports of a project, newest first.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+selectColumns+` FROM inspection_reports
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	items := make([]Report, 0)
	for rows.Next() {
		item, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return items, nil
}

// UpdateDraft changes the title and content of a report the drafter still owns.
func (r *Repository) UpdateDraft(ctx context.Context, id uuid.UUID, title, content string) (Report, error) {
	updated, err := scanReport(r.pool.QueryRow(ctx, `
		UPDATE inspection_reports
		SET title = $2, content = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND status IN ('draft', 'rejected_by_pl')
		RETURNING`+selectColumns, id, title, content))
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, history.ExplainMiss(ctx, r.pool, table, entityName, id, "draft")
	}
	if err != nil {
		return Report{}, fmt.Errorf("failed to update report: %w", err)
	}
	return updated, nil
}

// Transition moves a report from p.From to p.To, stamps the reviewer column
// for the target status and records the change in the audit trail. The row
// and its history entry share one timestamp so approved_at compares against
// project transitions on the same clock.
func (r *Repository) Transition(ctx context.Context, p TransitionParams) (Report, error) {
	now := time.Now().UTC()
	var updated Report
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = scanReport(tx.QueryRow(ctx, `
			UPDATE inspection_reports
			SET status = $3,
				version = version + 1,
				updated_at = $6,
				verified_by = CASE WHEN $3 = 'verified_by_admin_team' THEN $4::uuid ELSE verified_by END,
				approved_by = CASE WHEN $3 = 'approved_by_pl' THEN $4::uuid ELSE approved_by END,
				approved_at = CASE WHEN $3 = 'approved_by_pl' THEN $6::timestamptz
					WHEN $3 = 'draft' THEN NULL ELSE approved_at END,
				completed_by = CASE WHEN $3 = 'completed' THEN $4::uuid ELSE completed_by END,
				rejected_by = CASE WHEN $3 = 'draft' AND $5::text IS NOT NULL THEN $4::uuid ELSE rejected_by END,
				rejection_notes = CASE WHEN $3 = 'draft' AND $5::text IS NOT NULL THEN $5::text ELSE rejection_notes END
			WHERE id = $1 AND status = $2
			RETURNING`+selectColumns,
			p.ID, p.From, p.To, p.ActorID, p.Notes, now))
		if errors.Is(err, pgx.ErrNoRows) {
			return history.ExplainMiss(ctx, tx, table, entityName, p.ID, p.From)
		}
		if err != nil {
			return fmt.Errorf("failed to update report status: %w", err)
		}

		return history.Record(ctx, tx, history.Entry{
			EntityType: events.EntityReport,
			EntityID:   updated.ID,
			ProjectID:  updated.ProjectID,
			FromStatus: p.From,
			ToStatus:   p.To,
			ActorID:    p.ActorID,
			ActorRole:  p.ActorRole,
			Notes:      p.Notes,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return Report{}, err
	}
	return updated, nil
}
