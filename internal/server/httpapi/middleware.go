package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/server/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

func withPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// principalFrom returns the authenticated caller. Handlers behind
// authRequired always have one.
func principalFrom(ctx context.Context) auth.Principal {
	if p, ok := ctx.Value(principalKey).(*auth.Principal); ok && p != nil {
		return *p
	}
	return auth.Principal{}
}

// authRequired admits requests carrying a valid bearer access token. The
// 401 messages start with "Unauthorized" so clients know to refresh.
func (s *Server) authRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondMessage(w, http.StatusUnauthorized, "Unauthorized: missing bearer token")
			return
		}

		p, err := s.users.Authenticate(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				respondMessage(w, http.StatusUnauthorized, "Unauthorized: token expired")
				return
			}
			respondMessage(w, http.StatusUnauthorized, "Unauthorized: invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

func (s *Server) roleRequired(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r.Context())
		for _, role := range roles {
			if p.Role == role {
				next.ServeHTTP(w, r)
				return
			}
		}
		respondMessage(w, http.StatusForbidden, "Access denied")
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.BodyLimit > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.opts.BodyLimit)
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
