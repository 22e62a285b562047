package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/dbx"
	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
	recordsrepo "github.com/dmitrijs2005/valuationdesk/internal/server/repositories/records"
	refreshtokensrepo "github.com/dmitrijs2005/valuationdesk/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/valuationdesk/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	createErr error
	getErr    error
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{users: map[string]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, e := range f.users {
		if e.ClientID == u.ClientID && e.Username == u.Username {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = "id-" + u.Username
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, clientID, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.ClientID == clientID && u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	mu        sync.Mutex
	tokens    map[string]*models.RefreshToken
	findErr   error
	delErr    error
	createErr error
	deleted   []string
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: expiresAt}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.tokens {
		if t.Expires.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

// fakeRecordsRepo keeps records in memory with the upsert semantics of the
// real repositories.
type fakeRecordsRepo struct {
	mu      sync.Mutex
	records map[models.RecordKey]*models.Record
	err     error
}

func newFakeRecordsRepo(recs ...*models.Record) *fakeRecordsRepo {
	f := &fakeRecordsRepo{records: map[models.RecordKey]*models.Record{}}
	for _, r := range recs {
		f.records[r.Key()] = r
	}
	return f
}

func cloneRecord(r *models.Record) *models.Record {
	c := *r
	return &c
}

func (f *fakeRecordsRepo) List(ctx context.Context, flt models.RecordFilter) ([]*models.Record, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	var all []*models.Record
	for _, r := range f.records {
		if r.Collection != flt.Collection || r.ClientID != flt.ClientID {
			continue
		}
		if flt.Username != "" && r.Username != flt.Username {
			continue
		}
		if flt.Status != "" && r.Status != flt.Status {
			continue
		}
		all = append(all, cloneRecord(r))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastUpdatedAt.After(all[j].LastUpdatedAt) })
	total := int64(len(all))
	if flt.Limit > 0 {
		lo := min(flt.Offset, len(all))
		hi := min(lo+flt.Limit, len(all))
		all = all[lo:hi]
	}
	return all, total, nil
}

func (f *fakeRecordsRepo) Get(ctx context.Context, key models.RecordKey) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.records[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneRecord(r), nil
}

func (f *fakeRecordsRepo) Upsert(ctx context.Context, r *models.Record) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if cur, ok := f.records[r.Key()]; ok {
		cur.Data = r.Data
		cur.LastUpdatedAt = r.LastUpdatedAt
		return cloneRecord(cur), nil
	}
	f.records[r.Key()] = cloneRecord(r)
	return cloneRecord(r), nil
}

func (f *fakeRecordsRepo) UpdateStatus(ctx context.Context, key models.RecordKey, status string, comments *string, at time.Time) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cur, ok := f.records[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cur.Status = status
	if comments != nil {
		cur.ReworkComments = *comments
	}
	cur.LastUpdatedAt = at
	return cloneRecord(cur), nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	rc *fakeRecordsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Records(db dbx.DBTX) recordsrepo.Repository             { return m.rc }
