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
	table      = "checklist_responses"
	entityName = "checklist response"
)

// Response is one inspector answer to one checklist item.
type Response struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	InspectionID *uuid.UUID
	ItemID       string
	InspectorID  uuid.UUID
	Response     []byte
	Status       string
	ReviewNotes  *string
	ReviewedBy   *uuid.UUID
	SubmittedAt  *time.Time
	ReviewedAt   *time.Time
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListFilter narrows ListByProject.
type ListFilter struct {
	InspectionID *uuid.UUID
	Status       *string
}

// TransitionParams describes one compare-and-set on a response status.
type TransitionParams struct {
	ID        uuid.UUID
	From      string
	To        string
	ActorID   uuid.UUID
	ActorRole string
	Notes     *string
}

// Repository provides database operations for checklist responses.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new checklist repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `
	id, project_id, inspection_id, item_id, inspector_id, response, status,
	review_notes, reviewed_by, submitted_at, reviewed_at, version, created_at, updated_at`

func scanResponse(row pgx.Row) (Response, error) {
	var r Response
	err := row.Scan(
		&r.ID, &r.ProjectID, &r.InspectionID, &r.ItemID, &r.InspectorID, &r.Response, &r.Status,
		&r.ReviewNotes, &r.ReviewedBy, &r.SubmittedAt, &r.ReviewedAt, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create inserts a draft response.
func (r *Repository) Create(ctx context.Context, resp Response) (Response, error) {
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	if len(resp.Response) == 0 {
		resp.Response = []byte("{}")
	}

	created, err := scanResponse(r.pool.QueryRow(ctx, `
		INSERT INTO checklist_responses (id, project_id, inspection_id, item_id, inspector_id, response, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'draft')
		RETURNING`+selectColumns,
		resp.ID, resp.ProjectID, resp.InspectionID, resp.ItemID, resp.InspectorID, resp.Response,
	))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Response{}, apperr.NotFound("project or inspection not found")
		}
		return Response{}, fmt.Errorf("failed to create checklist response: %w", err)
	}
	return created, nil
}

// GetByID retrieves a response by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Response, error) {
	resp, err := scanResponse(r.pool.QueryRow(ctx,
		`SELECT`+selectColumns+` FROM checklist_responses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Response{}, apperr.NotFound(entityName + " not found")
	}
	if err != nil {
		return Response{}, fmt.Errorf("failed to get checklist response: %w", err)
	}
	return resp, nil
}

// ListByProject returns the responses of a project ordered by item.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]Response, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+selectColumns+`
		FROM checklist_responses
		WHERE project_id = $1
			AND ($2::uuid IS NULL OR inspection_id = $2)
			AND ($3::text IS NULL OR status = $3)
		ORDER BY item_id, created_at`,
		projectID, filter.InspectionID, filter.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist responses: %w", err)
	}
	defer rows.Close()

	items := make([]Response, 0)
	for rows.Next() {
		item, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist response: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checklist responses: %w", err)
	}
	return items, nil
}

// DraftItemIDs returns the item ids of responses still in draft, scoped to
// one inspection when inspectionID is set.
func (r *Repository) DraftItemIDs(ctx context.Context, projectID uuid.UUID, inspectionID *uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT item_id FROM checklist_responses
		WHERE project_id = $1 AND status = 'draft'
			AND ($2::uuid IS NULL OR inspection_id = $2)
		ORDER BY item_id`, projectID, inspectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft checklist items: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan draft checklist item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draft checklist items: %w", err)
	}
	return ids, nil
}

// SaveDraft replaces the answer of a response that is still in draft.
func (r *Repository) SaveDraft(ctx context.Context, id uuid.UUID, response []byte) (Response, error) {
	updated, err := scanResponse(r.pool.QueryRow(ctx, `
		UPDATE checklist_responses
		SET response = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND status = 'draft'
		RETURNING`+selectColumns, id, response))
	if errors.Is(err, pgx.ErrNoRows) {
		return Response{}, history.ExplainMiss(ctx, r.pool, table, entityName, id, "draft")
	}
	if err != nil {
		return Response{}, fmt.Errorf("failed to save checklist response: %w", err)
	}
	return updated, nil
}

// Transition moves a response from p.From to p.To and records the change in
// the audit trail within one transaction.
func (r *Repository) Transition(ctx context.Context, p TransitionParams) (Response, error) {
	var updated Response
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = scanResponse(tx.QueryRow(ctx, `
			UPDATE checklist_responses
			SET status = $3,
				version = version + 1,
				updated_at = now(),
				submitted_at = CASE WHEN $3 = 'submitted' THEN now() ELSE submitted_at END,
				review_notes = CASE
					WHEN $3 IN ('project_lead_approved', 'rejected') THEN $5
					WHEN $3 = 'draft' THEN NULL
					ELSE review_notes END,
				reviewed_by = CASE
					WHEN $3 IN ('project_lead_approved', 'rejected') THEN $4::uuid
					WHEN $3 = 'draft' THEN NULL
					ELSE reviewed_by END,
				reviewed_at = CASE
					WHEN $3 IN ('project_lead_approved', 'rejected') THEN now()
					WHEN $3 = 'draft' THEN NULL
					ELSE reviewed_at END
			WHERE id = $1 AND status = $2
			RETURNING`+selectColumns,
			p.ID, p.From, p.To, p.ActorID, p.Notes))
		if errors.Is(err, pgx.ErrNoRows) {
			return history.ExplainMiss(ctx, tx, table, entityName, p.ID, p.From)
		}
		if err != nil {
			return fmt.Errorf("failed to update checklist response status: %w", err)
		}

		return history.Record(ctx, tx, history.Entry{
			EntityType: events.EntityChecklistResponse,
			EntityID:   updated.ID,
			ProjectID:  updated.ProjectID,
			FromStatus: p.From,
			ToStatus:   p.To,
			ActorID:    p.ActorID,
			ActorRole:  p.ActorRole,
			Notes:      p.Notes,
		})
	})
	if err != nil {
		return Response{}, err
	}
	return updated, nil
}
