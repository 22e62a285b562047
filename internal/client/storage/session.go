package storage

import (
	"context"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
	"github.com/dmitrijs2005/valuationdesk/internal/client/repositories/metadata"
)

// SessionStore persists the signed-in session in the metadata table so it
// survives restarts of the CLI. It satisfies gateway.SessionStore.
type SessionStore struct {
	repo metadata.Repository
}

func NewSessionStore(repo metadata.Repository) *SessionStore {
	return &SessionStore{repo: repo}
}

// Load returns nil when nobody is signed in.
func (s *SessionStore) Load(ctx context.Context) (*models.Session, error) {
	var sess models.Session
	found, err := metadata.GetJSON(ctx, s.repo, metadata.KeySession, &sess)
	if err != nil || !found {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *models.Session) error {
	return metadata.SetJSON(ctx, s.repo, metadata.KeySession, sess)
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, metadata.KeySession)
}
