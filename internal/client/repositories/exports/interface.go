// Package exports keeps a local history of generated report files.
package exports

import (
	"context"
	"time"
)

// Export is one generated report file.
type Export struct {
	ID        string
	UniqueID  string
	FormType  string
	Format    string
	Path      string
	Pages     int
	Images    int
	Dropped   int
	CreatedAt time.Time
}

type Repository interface {
	// Add stores e, assigning an ID when it has none.
	Add(ctx context.Context, e *Export) error
	// ByUniqueID returns the exports of one record, newest first.
	ByUniqueID(ctx context.Context, uniqueID string) ([]Export, error)
	// Recent returns at most limit exports, newest first.
	Recent(ctx context.Context, limit int) ([]Export, error)
}
