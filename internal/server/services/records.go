package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/dbx"
	"github.com/dmitrijs2005/valuationdesk/internal/server/auth"
	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
	"github.com/dmitrijs2005/valuationdesk/internal/server/repositories/repomanager"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ListQuery is the paging and filtering of a record listing. With neither
// Page nor Limit set every matching record is returned; a Page without a
// Limit gets DefaultPageLimit records.
type ListQuery struct {
	Page   int
	Limit  int
	Status string
}

// RecordPage is one page of a listing.
type RecordPage struct {
	Records    []*models.Record
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// RecordService implements the records API. Users see and edit their own
// records; managers and admins see every record of their client and decide
// on them.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repomanager: m, now: time.Now}
}

func checkCollection(name string) error {
	if !models.IsValidCollection(name) {
		return fmt.Errorf("%w: %q", common.ErrInvalidFormType, name)
	}
	return nil
}

func canSee(p auth.Principal, r *models.Record) bool {
	return common.IsReviewer(p.Role) || r.Username == p.Username
}

func (s *RecordService) List(ctx context.Context, p auth.Principal, collection string, q ListQuery) (*RecordPage, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if q.Status != "" && !common.IsValidStatus(q.Status) {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidStatus, q.Status)
	}
	paged := q.Page > 0 || q.Limit > 0
	if q.Page < 1 {
		q.Page = 1
	}
	if paged {
		if q.Limit < 1 {
			q.Limit = DefaultPageLimit
		}
		q.Limit = min(q.Limit, MaxPageLimit)
	} else {
		q.Limit = 0
	}

	f := models.RecordFilter{
		Collection: collection,
		ClientID:   p.ClientID,
		Status:     q.Status,
		Limit:      q.Limit,
		Offset:     (q.Page - 1) * q.Limit,
	}
	if !common.IsReviewer(p.Role) {
		f.Username = p.Username
	}

	recs, total, err := s.repomanager.Records(s.db).List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	if recs == nil {
		recs = []*models.Record{}
	}

	page := &RecordPage{Records: recs, Page: q.Page, Limit: q.Limit, Total: total}
	switch {
	case q.Limit > 0:
		page.TotalPages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	case total > 0:
		page.Limit = int(total)
		page.TotalPages = 1
	}
	return page, nil
}

// Get returns common.ErrorNotFound for records outside the caller's scope.
func (s *RecordService) Get(ctx context.Context, p auth.Principal, collection, uniqueID string) (*models.Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	rec, err := s.repomanager.Records(s.db).Get(ctx, models.RecordKey{Collection: collection, ClientID: p.ClientID, UniqueID: uniqueID})
	if err != nil {
		return nil, err
	}
	if !canSee(p, rec) {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

// Save creates or updates the record uniqueID with data. Resubmitting a
// record sent back for rework returns it to pending.
func (s *RecordService) Save(ctx context.Context, p auth.Principal, collection, uniqueID string, data map[string]any) (*models.Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	uniqueID = strings.TrimSpace(uniqueID)
	if uniqueID == "" {
		return nil, fmt.Errorf("%w: uniqueId is required", common.ErrorValidation)
	}

	now := s.now().UTC()
	rec := models.NewRecord(collection, uniqueID, p.ClientID, p.Username, data, now)

	var out *models.Record
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)

		cur, err := repo.Get(ctx, rec.Key())
		switch {
		case errors.Is(err, common.ErrorNotFound):
		case err != nil:
			return fmt.Errorf("error loading record: %w", err)
		case !canSee(p, cur):
			return common.ErrorForbidden
		}

		out, err = repo.Upsert(ctx, rec)
		if err != nil {
			return fmt.Errorf("error saving record: %w", err)
		}
		if out.Status == common.StatusRework {
			out, err = repo.UpdateStatus(ctx, rec.Key(), common.StatusPending, nil, now)
			if err != nil {
				return fmt.Errorf("error resubmitting record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// reviewStatuses are the statuses a reviewer may set directly.
var reviewStatuses = map[string]bool{
	common.StatusApproved:   true,
	common.StatusRejected:   true,
	common.StatusOnProgress: true,
	common.StatusPending:    true,
}

// SetStatus records a reviewer decision.
func (s *RecordService) SetStatus(ctx context.Context, p auth.Principal, collection, uniqueID, status string) (*models.Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if !common.IsReviewer(p.Role) {
		return nil, common.ErrorForbidden
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !reviewStatuses[status] {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}
	return s.repomanager.Records(s.db).UpdateStatus(ctx,
		models.RecordKey{Collection: collection, ClientID: p.ClientID, UniqueID: uniqueID}, status, nil, s.now().UTC())
}

// RequestRework sends a record back to its author with comments.
func (s *RecordService) RequestRework(ctx context.Context, p auth.Principal, collection, uniqueID, comments string) (*models.Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if !common.IsReviewer(p.Role) {
		return nil, common.ErrorForbidden
	}
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return nil, fmt.Errorf("%w: rework comments are required", common.ErrorValidation)
	}
	return s.repomanager.Records(s.db).UpdateStatus(ctx,
		models.RecordKey{Collection: collection, ClientID: p.ClientID, UniqueID: uniqueID}, common.StatusRework, &comments, s.now().UTC())
}
