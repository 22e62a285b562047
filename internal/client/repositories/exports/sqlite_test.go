package exports

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE exports (
  id         TEXT PRIMARY KEY,
  unique_id  TEXT NOT NULL,
  form_type  TEXT NOT NULL,
  format     TEXT NOT NULL,
  path       TEXT NOT NULL,
  pages      INTEGER NOT NULL DEFAULT 0,
  images     INTEGER NOT NULL DEFAULT 0,
  dropped    INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestAdd_AssignsIDAndListsNewestFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	first := &Export{UniqueID: "U1", FormType: "ubiShop", Format: "pdf", Path: "/tmp/a.pdf", Pages: 13, Images: 2, CreatedAt: base}
	second := &Export{UniqueID: "U1", FormType: "ubiShop", Format: "docx", Path: "/tmp/a.docx", Pages: 12, Dropped: 1, CreatedAt: base.Add(time.Hour)}
	other := &Export{ID: "fixed", UniqueID: "U2", FormType: "bomFlat", Format: "pdf", Path: "/tmp/b.pdf", CreatedAt: base.Add(2 * time.Hour)}

	for _, e := range []*Export{first, second, other} {
		require.NoError(t, r.Add(ctx, e))
	}
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "fixed", other.ID)

	got, err := r.ByUniqueID(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "docx", got[0].Format)
	assert.Equal(t, 1, got[0].Dropped)
	assert.Equal(t, 13, got[1].Pages)
	assert.True(t, base.Equal(got[1].CreatedAt))

	recent, err := r.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "fixed", recent[0].ID)

	none, err := r.ByUniqueID(ctx, "absent")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAdd_DuplicateIDFails(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	e := &Export{ID: "x", UniqueID: "U", FormType: "ubiApf", Format: "pdf", Path: "p", CreatedAt: time.Now()}
	require.NoError(t, r.Add(ctx, e))
	err := r.Add(ctx, e)
	require.ErrorContains(t, err, "failed to insert export")
}

func TestQuery_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.Recent(context.Background(), 5)
	require.ErrorContains(t, err, "failed to select exports")
}
