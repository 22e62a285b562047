// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
// Records can be moved to MongoDB with WithMongoRecords.
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dmitrijs2005/valuationdesk/internal/dbx"
	"github.com/dmitrijs2005/valuationdesk/internal/server/migrations"
	"github.com/dmitrijs2005/valuationdesk/internal/server/repositories/records"
	"github.com/dmitrijs2005/valuationdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/valuationdesk/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	mongo *mongo.Database
}

type Option func(*PostgresRepositoryManager)

// WithMongoRecords stores records in db instead of Postgres. Records then
// do not take part in Postgres transactions.
func WithMongoRecords(db *mongo.Database) Option {
	return func(m *PostgresRepositoryManager) { m.mongo = db }
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// Records returns the Mongo repository when configured, otherwise a
// Postgres one bound to db.
func (m *PostgresRepositoryManager) Records(db dbx.DBTX) records.Repository {
	if m.mongo != nil {
		return records.NewMongoRepository(m.mongo)
	}
	return records.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(opts ...Option) RepositoryManager {
	m := &PostgresRepositoryManager{}
	for _, o := range opts {
		o(m)
	}
	return m
}
