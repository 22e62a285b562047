package httpapi

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/server/auth"
	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
	"github.com/dmitrijs2005/valuationdesk/internal/server/services"
)

var (
	userPrincipal    = auth.Principal{UserID: "u1", Username: "alice", Role: common.RoleUser, ClientID: "acme"}
	managerPrincipal = auth.Principal{UserID: "u2", Username: "bob", Role: common.RoleManager, ClientID: "acme"}
	adminPrincipal   = auth.Principal{UserID: "u3", Username: "root", Role: common.RoleAdmin, ClientID: "acme"}
)

type fakeUsers struct {
	tokens map[string]auth.Principal

	loginResult *services.LoginResult
	loginErr    error
	pair        *services.TokenPair
	refreshErr  error
	refreshedBy string
	loggedOut   []string
	created     *models.User
	createErr   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{tokens: map[string]auth.Principal{
		"user-token":    userPrincipal,
		"manager-token": managerPrincipal,
		"admin-token":   adminPrincipal,
	}}
}

func (f *fakeUsers) Login(ctx context.Context, clientID, username, password string) (*services.LoginResult, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(username) == "" || password == "" {
		return nil, common.ErrorValidation
	}
	return f.loginResult, f.loginErr
}

func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	f.refreshedBy = refreshToken
	return f.pair, f.refreshErr
}

func (f *fakeUsers) Logout(ctx context.Context, refreshToken string) error {
	f.loggedOut = append(f.loggedOut, refreshToken)
	return nil
}

func (f *fakeUsers) Authenticate(token string) (*auth.Principal, error) {
	if token == "expired-token" {
		return nil, common.ErrTokenExpired
	}
	p, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return &p, nil
}

func (f *fakeUsers) CreateUser(ctx context.Context, clientID, username, password, role string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &models.User{ID: "new-id", ClientID: clientID, Username: username, Role: role}
	return f.created, nil
}

type fakeRecords struct {
	page      *services.RecordPage
	rec       *models.Record
	err       error
	lastQuery services.ListQuery
	lastP     auth.Principal
	lastID    string
	lastData  map[string]any
	lastArg   string
}

func (f *fakeRecords) List(ctx context.Context, p auth.Principal, collection string, q services.ListQuery) (*services.RecordPage, error) {
	f.lastP, f.lastQuery = p, q
	return f.page, f.err
}

func (f *fakeRecords) Get(ctx context.Context, p auth.Principal, collection, uniqueID string) (*models.Record, error) {
	f.lastP, f.lastID = p, uniqueID
	return f.rec, f.err
}

func (f *fakeRecords) Save(ctx context.Context, p auth.Principal, collection, uniqueID string, data map[string]any) (*models.Record, error) {
	f.lastP, f.lastID, f.lastData = p, uniqueID, data
	return f.rec, f.err
}

func (f *fakeRecords) SetStatus(ctx context.Context, p auth.Principal, collection, uniqueID, status string) (*models.Record, error) {
	f.lastP, f.lastID, f.lastArg = p, uniqueID, status
	return f.rec, f.err
}

func (f *fakeRecords) RequestRework(ctx context.Context, p auth.Principal, collection, uniqueID, comments string) (*models.Record, error) {
	f.lastP, f.lastID, f.lastArg = p, uniqueID, comments
	return f.rec, f.err
}

type fakeExports struct {
	err     error
	lastKey string
}

func (f *fakeExports) PresignUpload(ctx context.Context, p auth.Principal, fileName string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	key := "exports/" + p.ClientID + "/" + fileName
	return key, "https://s3.local/" + key + "?put", nil
}

func (f *fakeExports) PresignDownload(ctx context.Context, p auth.Principal, key string) (string, error) {
	f.lastKey = key
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.local/" + key + "?get", nil
}
