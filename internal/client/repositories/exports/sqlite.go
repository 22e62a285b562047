package exports

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/valuationdesk/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, e *Export) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := `INSERT INTO exports (id, unique_id, form_type, format, path, pages, images, dropped, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UniqueID, e.FormType, e.Format, e.Path, e.Pages, e.Images, e.Dropped, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}
	return nil
}

const selectExports = `SELECT id, unique_id, form_type, format, path, pages, images, dropped, created_at FROM exports`

func (r *SQLiteRepository) ByUniqueID(ctx context.Context, uniqueID string) ([]Export, error) {
	return r.query(ctx, selectExports+` WHERE unique_id = ? ORDER BY created_at DESC`, uniqueID)
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]Export, error) {
	return r.query(ctx, selectExports+` ORDER BY created_at DESC LIMIT ?`, limit)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Export, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select exports: %w", err)
	}
	defer rows.Close()

	var result []Export
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.ID, &e.UniqueID, &e.FormType, &e.Format, &e.Path,
			&e.Pages, &e.Images, &e.Dropped, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate export rows: %w", err)
	}
	return result, nil
}
