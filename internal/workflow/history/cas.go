package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExplainMiss turns a compare-and-set that matched no rows into NotFound when
// the row is gone, or a stale transition error carrying the current status.
// table must be a trusted identifier.
func ExplainMiss(ctx context.Context, q db.DBTX, table, entity string, id uuid.UUID, expected string) error {
	var actual string
	err := q.QueryRow(ctx, fmt.Sprintf("SELECT status FROM %s WHERE id = $1", table), id).Scan(&actual)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity + " not found")
	}
	if err != nil {
		return fmt.Errorf("failed to read %s status: %w", entity, err)
	}
	return domain.ErrStaleTransition(entity, expected, actual)
}
