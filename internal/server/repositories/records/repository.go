// Package records stores valuation records. Postgres keeps the form data in
// a JSONB column; the Mongo implementation keeps one collection per form.
package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
)

type Repository interface {
	// List returns the page of records matching f, most recently updated
	// first, and the number of all matching records.
	List(ctx context.Context, f models.RecordFilter) ([]*models.Record, int64, error)

	// Get returns common.ErrorNotFound for an unknown key.
	Get(ctx context.Context, key models.RecordKey) (*models.Record, error)

	// Upsert inserts r or, when its key exists, replaces the stored form
	// data and LastUpdatedAt. Ownership, status and CreatedAt of an existing
	// record are kept. The stored record is returned.
	Upsert(ctx context.Context, r *models.Record) (*models.Record, error)

	// UpdateStatus sets the status and LastUpdatedAt of the record at key.
	// A nil comments keeps the stored rework comments.
	UpdateStatus(ctx context.Context, key models.RecordKey, status string, comments *string, at time.Time) (*models.Record, error)
}
