// Package users stores API accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A taken
	// (clientId, username) pair yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, clientID, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
