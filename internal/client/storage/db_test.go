package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
	"github.com/dmitrijs2005/valuationdesk/internal/client/repositories/exports"
	"github.com/dmitrijs2005/valuationdesk/internal/common"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInitDatabase_CreatesTables(t *testing.T) {
	ctx := context.Background()
	repos, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer repos.Close()

	for _, name := range []string{"goose_db_version", "metadata", "exports"} {
		assert.True(t, tableExists(t, repos.DB, name), name)
	}

	require.NoError(t, repos.Exports.Add(ctx, &exports.Export{UniqueID: "U", FormType: "ubiShop", Format: "pdf", Path: "p", CreatedAt: time.Now()}))
	got, err := repos.Exports.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
	assert.True(t, tableExists(t, db, "metadata"))
}

func TestSessionStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	repos, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	store := NewSessionStore(repos.Metadata)

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	want := &models.Session{
		Identity:     models.Identity{Username: "asha", Role: common.RoleManager, ClientID: "C1"},
		Token:        "access",
		RefreshToken: "refresh",
	}
	require.NoError(t, store.Save(ctx, want))
	require.NoError(t, repos.Close())

	repos, err = InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer repos.Close()
	store = NewSessionStore(repos.Metadata)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear(ctx))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
