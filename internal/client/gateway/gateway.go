// Package gateway is the single path every API call takes. It attaches
// credentials according to the session state, caches GET responses, and
// refreshes expired access tokens with at most one refresh in flight.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
	"github.com/dmitrijs2005/valuationdesk/internal/logging"
)

// AuthMode is how a request is authenticated.
type AuthMode int

const (
	// AuthPublic requests go out unmodified.
	AuthPublic AuthMode = iota
	// AuthService requests carry the fixed service key.
	AuthService
	// AuthBearer requests carry the session access token.
	AuthBearer
	// AuthIdentity requests carry the session identity in the body.
	AuthIdentity
	// AuthGuest requests carry the guest identity in the body.
	AuthGuest
)

func (m AuthMode) String() string {
	switch m {
	case AuthPublic:
		return "public"
	case AuthService:
		return "service"
	case AuthBearer:
		return "bearer"
	case AuthIdentity:
		return "identity"
	case AuthGuest:
		return "guest"
	}
	return "unknown"
}

const (
	refreshPath = "/auth/refresh-token"
	servicePath = "/free-stream-ai"

	StatusCached = "OK (Cached)"
)

var publicPaths = []string{"/auth/login", "/auth/logout"}

// ModeFor classifies a request path against the current session.
func ModeFor(path string, s *models.Session) AuthMode {
	for _, p := range publicPaths {
		if strings.Contains(path, p) {
			return AuthPublic
		}
	}
	switch {
	case strings.Contains(path, servicePath):
		return AuthService
	case s == nil:
		return AuthGuest
	case s.Token != "":
		return AuthBearer
	default:
		return AuthIdentity
	}
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

type Response struct {
	StatusCode int
	Status     string
	Body       []byte
	Cached     bool
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

type Options struct {
	BaseURL    string
	ServiceKey string
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Cache      Cache
	Sessions   SessionStore
	Log        logging.Logger
}

// Gateway holds all mutable request state of one process: the cache, the
// refresh group and the notification flag.
type Gateway struct {
	baseURL    string
	serviceKey string
	ttl        time.Duration
	client     *http.Client
	cache      Cache
	sessions   SessionStore
	log        logging.Logger
	now        func() time.Time

	refresh  singleflight.Group
	notifier notifier
}

// New builds a Gateway. A nil Cache gets a MemoryCache, a nil SessionStore
// a MemorySessionStore.
func New(o Options) (*Gateway, error) {
	if o.Cache == nil {
		c, err := NewMemoryCache(DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		o.Cache = c
	}
	if o.Sessions == nil {
		o.Sessions = NewMemorySessionStore()
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	return &Gateway{
		baseURL:    strings.TrimRight(o.BaseURL, "/"),
		serviceKey: o.ServiceKey,
		ttl:        o.CacheTTL,
		client:     o.HTTPClient,
		cache:      o.Cache,
		sessions:   o.Sessions,
		log:        o.Log,
		now:        time.Now,
	}, nil
}

// SetNotificationHandler installs the receiver of auth notifications.
func (g *Gateway) SetNotificationHandler(h func(msg string)) { g.notifier.setHandler(h) }

// ResetNotification re-arms the one-time auth notification.
func (g *Gateway) ResetNotification() { g.notifier.reset() }

// InvalidateCache drops cached responses whose key contains substr.
func (g *Gateway) InvalidateCache(ctx context.Context, substr string) {
	g.cache.Invalidate(ctx, substr)
}

func (g *Gateway) ClearCache(ctx context.Context) { g.cache.Clear(ctx) }

func (g *Gateway) Session(ctx context.Context) (*models.Session, error) {
	return g.sessions.Load(ctx)
}

func (g *Gateway) SetSession(ctx context.Context, s *models.Session) error {
	return g.sessions.Save(ctx, s)
}

func (g *Gateway) ClearSession(ctx context.Context) error {
	return g.sessions.Clear(ctx)
}

func (g *Gateway) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

func (g *Gateway) Post(ctx context.Context, path string, body map[string]any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (g *Gateway) Put(ctx context.Context, path string, body map[string]any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (g *Gateway) Patch(ctx context.Context, path string, body map[string]any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Do sends req. Fresh cached GET responses are returned without a network
// round trip. Any non-2xx response yields a *StatusError.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	sess, err := g.sessions.Load(ctx)
	if err != nil {
		g.log.Warn(ctx, "session load failed", "error", err)
		sess = nil
	}
	mode := ModeFor(req.Path, sess)

	cacheable := req.Method == http.MethodGet && mode != AuthPublic
	key := CacheKey(req.Path, req.Query)
	if cacheable {
		if e, ok := g.cache.Get(ctx, key); ok && e.Fresh(g.now(), g.ttl) {
			return &Response{StatusCode: http.StatusOK, Status: StatusCached, Body: e.Data, Cached: true}, nil
		}
	}

	return g.roundTrip(ctx, req, mode, sess, false, cacheable, key)
}

func (g *Gateway) roundTrip(ctx context.Context, req Request, mode AuthMode, sess *models.Session, retried, cacheable bool, key string) (*Response, error) {
	resp, err := g.send(ctx, req, mode, sess)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if cacheable && resp.StatusCode == http.StatusOK {
			g.cache.Set(ctx, key, Entry{Data: resp.Body, StoredAt: g.now()})
		}
		return resp, nil
	}

	msg := errorMessage(resp.Body)
	if resp.StatusCode != http.StatusUnauthorized {
		return nil, &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if strings.Contains(msg, "Unauthorized") && sess != nil && sess.RefreshToken != "" && !retried {
		token, err := g.refreshToken(ctx, sess)
		if err != nil {
			if cerr := g.sessions.Clear(ctx); cerr != nil {
				g.log.Warn(ctx, "session clear failed", "error", cerr)
			}
			g.notifier.notify(MsgSessionExpired)
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		next := *sess
		next.Token = token
		return g.roundTrip(ctx, req, AuthBearer, &next, true, cacheable, key)
	}

	g.notifier.notify(MsgUnauthorized)
	return nil, &StatusError{Code: resp.StatusCode, Message: msg}
}

// refreshToken obtains a new access token. Concurrent callers share one
// refresh call and its outcome. A caller whose token was already replaced
// by an earlier refresh reuses the stored token.
func (g *Gateway) refreshToken(ctx context.Context, used *models.Session) (string, error) {
	if cur, err := g.sessions.Load(ctx); err == nil && cur != nil && cur.Token != "" && cur.Token != used.Token {
		return cur.Token, nil
	}

	v, err, shared := g.refresh.Do("refresh", func() (any, error) {
		cur, err := g.sessions.Load(ctx)
		if err != nil {
			return "", err
		}
		if cur == nil || cur.RefreshToken == "" {
			return "", ErrNoRefreshToken
		}
		if cur.Token != "" && cur.Token != used.Token {
			return cur.Token, nil
		}

		resp, err := g.send(ctx, Request{
			Method: http.MethodPost,
			Path:   refreshPath,
			Body:   map[string]any{"refreshToken": cur.RefreshToken},
		}, AuthPublic, nil)
		if err != nil {
			return "", err
		}
		if resp.StatusCode != http.StatusOK {
			return "", &StatusError{Code: resp.StatusCode, Message: errorMessage(resp.Body)}
		}

		var body struct {
			Token        string `json:"token"`
			RefreshToken string `json:"refreshToken"`
		}
		if err := resp.Decode(&body); err != nil {
			return "", fmt.Errorf("decode refresh response: %w", err)
		}
		if body.Token == "" {
			return "", fmt.Errorf("refresh response carries no token")
		}

		next := *cur
		next.Token = body.Token
		if body.RefreshToken != "" {
			next.RefreshToken = body.RefreshToken
		}
		if err := g.sessions.Save(ctx, &next); err != nil {
			return "", err
		}
		g.log.Info(ctx, "access token refreshed", "username", next.Username)
		return body.Token, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		g.log.Debug(ctx, "joined in-flight token refresh")
	}
	return v.(string), nil
}

func (g *Gateway) send(ctx context.Context, req Request, mode AuthMode, sess *models.Session) (*Response, error) {
	u := g.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	body := req.Body
	if req.Method != http.MethodGet {
		switch mode {
		case AuthIdentity:
			body = withIdentity(body, sess.Identity)
		case AuthGuest:
			body = withIdentity(body, models.Guest)
		}
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, u, rd)
	if err != nil {
		return nil, err
	}
	if rd != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	hr.Header.Set("Accept", "application/json")

	switch mode {
	case AuthService:
		hr.Header.Set("Authorization", g.serviceKey)
	case AuthBearer:
		hr.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := g.client.Do(hr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Status: resp.Status, Body: data}, nil
}

// withIdentity returns a copy of body with the identity fields set.
func withIdentity(body map[string]any, id models.Identity) map[string]any {
	out := make(map[string]any, len(body)+3)
	for k, v := range body {
		out[k] = v
	}
	for k, v := range id.Fields() {
		out[k] = v
	}
	return out
}

func errorMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err == nil && m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(string(body))
}
