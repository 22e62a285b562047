// Package services contains server-side business logic. This file implements
// UserService, which handles login, issuing and refreshing JWTs plus
// server-stored refresh tokens, and account management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/cryptox"
	"github.com/dmitrijs2005/valuationdesk/internal/dbx"
	"github.com/dmitrijs2005/valuationdesk/internal/server/auth"
	"github.com/dmitrijs2005/valuationdesk/internal/server/config"
	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
	"github.com/dmitrijs2005/valuationdesk/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is a successful login: the account and its fresh tokens.
type LoginResult struct {
	User *models.User
	TokenPair
}

// UserService provides authentication-related operations:
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
// - CreateUser / EnsureAdmin: account management
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time

	// dummyHash is verified against when the user does not exist, so both
	// failure paths cost one Argon2 derivation.
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
		dummyHash:                    cryptox.HashPassword(common.GenerateRandByteArray(16)),
	}
}

// Login verifies the credentials of username within clientID and, on
// success, returns the user and a new TokenPair. Blank fields yield
// common.ErrorValidation, bad credentials common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, clientID, username, password string) (*LoginResult, error) {
	clientID, username = strings.TrimSpace(clientID), strings.TrimSpace(username)
	if clientID == "" || username == "" || password == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, clientID, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(s.dummyHash, []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, []byte(password))
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, TokenPair: *pair}, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Unknown tokens yield common.ErrorUnauthorized,
// expired ones common.ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		if err := repo.Delete(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetUserByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error loading user: %w", err)
		}
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes refreshToken. A blank token is a no-op.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// Authenticate verifies an access token.
func (s *UserService) Authenticate(token string) (*auth.Principal, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

// CreateUser adds an account. An empty role means common.RoleUser.
func (s *UserService) CreateUser(ctx context.Context, clientID, username, password, role string) (*models.User, error) {
	clientID, username = strings.TrimSpace(clientID), strings.TrimSpace(username)
	if clientID == "" || username == "" || password == "" {
		return nil, common.ErrorValidation
	}
	switch role {
	case "":
		role = common.RoleUser
	case common.RoleUser, common.RoleManager, common.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrorValidation, role)
	}

	user := &models.User{
		ClientID:     clientID,
		Username:     username,
		Role:         role,
		PasswordHash: cryptox.HashPassword([]byte(password)),
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates the admin account when it does not exist yet. It
// reports whether an account was created. A blank password disables it.
func (s *UserService) EnsureAdmin(ctx context.Context, clientID, username, password string) (bool, error) {
	if password == "" {
		return false, nil
	}
	_, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, clientID, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, fmt.Errorf("error looking up admin: %w", err)
	}
	if _, err := s.CreateUser(ctx, clientID, username, password, common.RoleAdmin); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PurgeExpiredTokens drops refresh tokens that can no longer be used.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, s.now())
}

// --- helpers below ---

func principalOf(u *models.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Username: u.Username, Role: u.Role, ClientID: u.ClientID}
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(principalOf(user), s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, user.ID, refresh, s.now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
