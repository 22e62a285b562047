package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/dbx"
	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func filterClause(f models.RecordFilter) (string, []any) {
	conds := []string{"collection = $1", "client_id = $2"}
	args := []any{f.Collection, f.ClientID}
	if f.Username != "" {
		args = append(args, f.Username)
		conds = append(conds, fmt.Sprintf("username = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, f models.RecordFilter) ([]*models.Record, int64, error) {
	where, args := filterClause(f)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT unique_id, username, status, rework_comments, data, created_at, last_updated_at
		FROM records WHERE ` + where + ` ORDER BY last_updated_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		rec := &models.Record{Collection: f.Collection, ClientID: f.ClientID}
		var data []byte
		if err := rows.Scan(&rec.UniqueID, &rec.Username, &rec.Status, &rec.ReworkComments, &data,
			&rec.CreatedAt, &rec.LastUpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		if err := decodeData(data, rec); err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) Get(ctx context.Context, key models.RecordKey) (*models.Record, error) {
	query := `SELECT username, status, rework_comments, data, created_at, last_updated_at
		FROM records
		WHERE collection = $1 AND client_id = $2 AND unique_id = $3`

	rec := &models.Record{Collection: key.Collection, ClientID: key.ClientID, UniqueID: key.UniqueID}
	var data []byte
	err := r.db.QueryRowContext(ctx, query, key.Collection, key.ClientID, key.UniqueID).
		Scan(&rec.Username, &rec.Status, &rec.ReworkComments, &data, &rec.CreatedAt, &rec.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := decodeData(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.Record) (*models.Record, error) {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record data: %w", err)
	}

	query := `INSERT INTO records (collection, client_id, unique_id, username, status, data, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (collection, client_id, unique_id) DO UPDATE
		SET data = EXCLUDED.data, last_updated_at = EXCLUDED.last_updated_at
		RETURNING username, status, rework_comments, created_at, last_updated_at`

	out := &models.Record{Collection: rec.Collection, ClientID: rec.ClientID, UniqueID: rec.UniqueID, Data: rec.Data}
	err = r.db.QueryRowContext(ctx, query,
		rec.Collection, rec.ClientID, rec.UniqueID, rec.Username, rec.Status, data,
		rec.CreatedAt.UTC(), rec.LastUpdatedAt.UTC(),
	).Scan(&out.Username, &out.Status, &out.ReworkComments, &out.CreatedAt, &out.LastUpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, key models.RecordKey, status string, comments *string, at time.Time) (*models.Record, error) {
	query := `UPDATE records
		SET status = $4, rework_comments = COALESCE($5, rework_comments), last_updated_at = $6
		WHERE collection = $1 AND client_id = $2 AND unique_id = $3
		RETURNING username, status, rework_comments, data, created_at, last_updated_at`

	var c sql.NullString
	if comments != nil {
		c = sql.NullString{String: *comments, Valid: true}
	}

	rec := &models.Record{Collection: key.Collection, ClientID: key.ClientID, UniqueID: key.UniqueID}
	var data []byte
	err := r.db.QueryRowContext(ctx, query, key.Collection, key.ClientID, key.UniqueID, status, c, at.UTC()).
		Scan(&rec.Username, &rec.Status, &rec.ReworkComments, &data, &rec.CreatedAt, &rec.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := decodeData(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeData(data []byte, rec *models.Record) error {
	rec.Data = map[string]any{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return fmt.Errorf("failed to decode record %s data: %w", rec.UniqueID, err)
	}
	return nil
}
