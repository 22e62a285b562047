package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/cryptox"
	"github.com/dmitrijs2005/valuationdesk/internal/server/config"
	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
)

var (
	aliceHash = cryptox.HashPassword([]byte("right"))
	alice     = &models.User{ID: "u1", ClientID: "c1", Username: "alice", Role: common.RoleManager, PasswordHash: aliceHash}
)

func newUserService(t *testing.T, rm *fakeRepoManager) *UserService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(db, rm, cfg)
}

func TestLogin_Flows(t *testing.T) {
	ctx := context.Background()

	s := newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(alice), r: newFakeRefreshRepo()})

	_, err := s.Login(ctx, "c1", "", "right")
	assert.ErrorIs(t, err, common.ErrorValidation, "blank username")

	_, err = s.Login(ctx, "c1", "ghost", "right")
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "unknown user")

	_, err = s.Login(ctx, "c2", "alice", "right")
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "other client")

	_, err = s.Login(ctx, "c1", "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "wrong password")

	res, err := s.Login(ctx, " c1 ", "alice", "right")
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)
	assert.NotEmpty(t, res.RefreshToken)

	p, err := s.Authenticate(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, common.RoleManager, p.Role)
	assert.Equal(t, "c1", p.ClientID)
}

func TestLogin_InternalErrors(t *testing.T) {
	ctx := context.Background()

	users := newFakeUsersRepo()
	users.getErr = errBoom{}
	s := newUserService(t, &fakeRepoManager{u: users, r: newFakeRefreshRepo()})
	_, err := s.Login(ctx, "c1", "alice", "right")
	assert.ErrorIs(t, err, common.ErrorInternal)

	broken := &models.User{ID: "u2", ClientID: "c1", Username: "bob", PasswordHash: "plain"}
	s = newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(broken), r: newFakeRefreshRepo()})
	_, err = s.Login(ctx, "c1", "bob", "x")
	assert.ErrorIs(t, err, common.ErrorInternal, "malformed stored hash")

	refresh := newFakeRefreshRepo()
	refresh.createErr = errBoom{}
	s = newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(alice), r: refresh})
	_, err = s.Login(ctx, "c1", "alice", "right")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRefreshToken_Rotates(t *testing.T) {
	ctx := context.Background()
	refresh := newFakeRefreshRepo()
	rm := &fakeRepoManager{u: newFakeUsersRepo(alice), r: refresh}

	s := newUserService(t, rm)
	db, mock := newSQLMockDB(t)
	s.db = db
	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := s.Login(ctx, "c1", "alice", "right")
	require.NoError(t, err)

	pair, err := s.RefreshToken(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, res.RefreshToken, pair.RefreshToken)
	assert.Contains(t, refresh.deleted, res.RefreshToken)

	_, err = refresh.Find(ctx, pair.RefreshToken)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Failures(t *testing.T) {
	ctx := context.Background()

	s := newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(alice), r: newFakeRefreshRepo()})
	_, err := s.RefreshToken(ctx, "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.RefreshToken(ctx, "unknown")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	expired := newFakeRefreshRepo()
	expired.tokens["old"] = &models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(-time.Minute)}
	s = newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(alice), r: expired})
	_, err = s.RefreshToken(ctx, "old")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.Equal(t, []string{"old"}, expired.deleted)

	failing := newFakeRefreshRepo()
	failing.findErr = errBoom{}
	s = newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(alice), r: failing})
	_, err = s.RefreshToken(ctx, "r")
	if err == nil || !regexp.MustCompile(`error searching refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped find error, got %v", err)
	}
}

func TestRefreshToken_TxRollback(t *testing.T) {
	ctx := context.Background()

	orphan := newFakeRefreshRepo()
	orphan.tokens["r"] = &models.RefreshToken{UserID: "gone", Token: "r", Expires: time.Now().Add(time.Hour)}
	s := newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(alice), r: orphan})
	db, mock := newSQLMockDB(t)
	s.db = db
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.RefreshToken(ctx, "r")
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "owner deleted")

	del := newFakeRefreshRepo()
	del.tokens["r"] = &models.RefreshToken{UserID: "u1", Token: "r", Expires: time.Now().Add(time.Hour)}
	del.delErr = errBoom{}
	s = newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(alice), r: del})
	db, mock = newSQLMockDB(t)
	s.db = db
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = s.RefreshToken(ctx, "r")
	if err == nil || !regexp.MustCompile(`error deleting refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	refresh := newFakeRefreshRepo()
	refresh.tokens["r"] = &models.RefreshToken{UserID: "u1", Token: "r"}
	s := newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(alice), r: refresh})

	require.NoError(t, s.Logout(ctx, ""))
	assert.Empty(t, refresh.deleted)

	require.NoError(t, s.Logout(ctx, "r"))
	assert.Equal(t, []string{"r"}, refresh.deleted)

	refresh.delErr = errBoom{}
	assert.Error(t, s.Logout(ctx, "x"))
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsersRepo(alice)
	s := newUserService(t, &fakeRepoManager{u: users, r: newFakeRefreshRepo()})

	u, err := s.CreateUser(ctx, "c1", "bob", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, common.RoleUser, u.Role)
	ok, err := cryptox.VerifyPassword(u.PasswordHash, []byte("pw"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.CreateUser(ctx, "c1", "bob", "pw", "")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = s.CreateUser(ctx, "c1", "carol", "pw", "owner")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.CreateUser(ctx, "", "carol", "pw", "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	users.createErr = errBoom{}
	_, err = s.CreateUser(ctx, "c1", "dave", "pw", common.RoleManager)
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped create error, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsersRepo()
	s := newUserService(t, &fakeRepoManager{u: users, r: newFakeRefreshRepo()})

	created, err := s.EnsureAdmin(ctx, "admin", "admin", "")
	require.NoError(t, err)
	assert.False(t, created, "blank password disables bootstrap")

	created, err = s.EnsureAdmin(ctx, "admin", "admin", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	u, err := users.GetUserByLogin(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, common.RoleAdmin, u.Role)

	created, err = s.EnsureAdmin(ctx, "admin", "admin", "pw")
	require.NoError(t, err)
	assert.False(t, created)

	users.getErr = errBoom{}
	_, err = s.EnsureAdmin(ctx, "admin", "admin", "pw")
	assert.True(t, errors.Is(err, errBoom{}))
}

func TestPurgeExpiredTokens(t *testing.T) {
	refresh := newFakeRefreshRepo()
	refresh.tokens["a"] = &models.RefreshToken{Expires: time.Now().Add(-time.Hour)}
	refresh.tokens["b"] = &models.RefreshToken{Expires: time.Now().Add(time.Hour)}
	s := newUserService(t, &fakeRepoManager{u: newFakeUsersRepo(), r: refresh})

	n, err := s.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Contains(t, refresh.tokens, "b")
}
