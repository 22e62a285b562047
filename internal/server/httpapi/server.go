// Package httpapi exposes the JSON API of the valuation desk under /api:
// authentication, the three record collections and the export archive.
package httpapi

import (
	"context"
	"net/http"
	"regexp"
	"slices"

	"github.com/rs/cors"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/logging"
	"github.com/dmitrijs2005/valuationdesk/internal/server/auth"
	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
	"github.com/dmitrijs2005/valuationdesk/internal/server/services"
)

const apiPrefix = "/api"

type UserService interface {
	Login(ctx context.Context, clientID, username, password string) (*services.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(token string) (*auth.Principal, error)
	CreateUser(ctx context.Context, clientID, username, password, role string) (*models.User, error)
}

type RecordService interface {
	List(ctx context.Context, p auth.Principal, collection string, q services.ListQuery) (*services.RecordPage, error)
	Get(ctx context.Context, p auth.Principal, collection, uniqueID string) (*models.Record, error)
	Save(ctx context.Context, p auth.Principal, collection, uniqueID string, data map[string]any) (*models.Record, error)
	SetStatus(ctx context.Context, p auth.Principal, collection, uniqueID, status string) (*models.Record, error)
	RequestRework(ctx context.Context, p auth.Principal, collection, uniqueID, comments string) (*models.Record, error)
}

type ExportService interface {
	PresignUpload(ctx context.Context, p auth.Principal, fileName string) (key string, url string, err error)
	PresignDownload(ctx context.Context, p auth.Principal, key string) (string, error)
}

// Options configures the cross-cutting behaviour of the API.
type Options struct {
	// AllowedOrigins are matched exactly; ClientURL is added to them.
	AllowedOrigins []string
	ClientURL      string
	// BodyLimit caps request bodies in bytes. Zero means unlimited.
	BodyLimit int64
}

type Server struct {
	users   UserService
	records RecordService
	exports ExportService
	log     logging.Logger
	opts    Options
}

func NewServer(us UserService, rs RecordService, es ExportService, log logging.Logger, opts Options) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{users: us, records: rs, exports: es, log: log.With("module", "http_api"), opts: opts}
}

// Handler returns the API with CORS, body limit and request logging
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/refresh-token", s.handleRefreshToken)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.Handle("POST /auth/users", s.authRequired(s.roleRequired(http.HandlerFunc(s.handleCreateUser), common.RoleAdmin)))

	for _, c := range models.Collections {
		mux.Handle("GET /"+c, s.authRequired(s.handleList(c)))
		mux.Handle("POST /"+c, s.authRequired(s.handleSave(c)))
		mux.Handle("GET /"+c+"/{id}", s.authRequired(s.handleGet(c)))
		mux.Handle("PATCH /"+c+"/{id}/status", s.authRequired(s.roleRequired(s.handleSetStatus(c), common.RoleManager, common.RoleAdmin)))
		mux.Handle("POST /"+c+"/{id}/rework", s.authRequired(s.roleRequired(s.handleRework(c), common.RoleManager, common.RoleAdmin)))
	}

	mux.Handle("POST /exports/presign", s.authRequired(http.HandlerFunc(s.handlePresignUpload)))
	mux.Handle("GET /exports/url", s.authRequired(http.HandlerFunc(s.handlePresignDownload)))

	var h http.Handler = http.StripPrefix(apiPrefix, mux)
	h = s.limitBody(h)
	h = s.corsHandler().Handler(h)
	return s.logRequests(h)
}

var vercelOrigin = regexp.MustCompile(`^https://[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*\.vercel\.app$`)

// AllowOrigin reports whether browsers at origin may call the API: the
// configured origins, the client URL and any *.vercel.app deployment.
func (s *Server) AllowOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	if slices.Contains(s.opts.AllowedOrigins, origin) || (s.opts.ClientURL != "" && origin == s.opts.ClientURL) {
		return true
	}
	return vercelOrigin.MatchString(origin)
}

// corsHandler echoes any requested headers back to allowed origins. rs/cors
// only matches an explicit header list when the request names it in
// lowercase sorted order, which non-browser clients often do not.
func (s *Server) corsHandler() *cors.Cors {
	return cors.New(cors.Options{
		AllowOriginFunc:  s.AllowOrigin,
		AllowCredentials: true,
		AllowedHeaders:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		MaxAge:           600,
	})
}
