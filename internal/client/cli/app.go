package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/client/api"
	"github.com/dmitrijs2005/valuationdesk/internal/client/client"
	"github.com/dmitrijs2005/valuationdesk/internal/client/config"
	"github.com/dmitrijs2005/valuationdesk/internal/client/dashboard"
	"github.com/dmitrijs2005/valuationdesk/internal/client/gateway"
	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
	"github.com/dmitrijs2005/valuationdesk/internal/client/repositories/exports"
	"github.com/dmitrijs2005/valuationdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/valuationdesk/internal/client/storage"
	"github.com/dmitrijs2005/valuationdesk/internal/logging"
	"github.com/dmitrijs2005/valuationdesk/internal/report/export"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// API is the part of the HTTP API the CLI talks to.
type API interface {
	dashboard.Source
	Session(ctx context.Context) (*models.Session, error)
	Login(ctx context.Context, clientID, username, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	Record(ctx context.Context, form models.FormType, uniqueID string) (models.Record, error)
	SetStatus(ctx context.Context, form models.FormType, uniqueID string, status models.Status) error
	RequestRework(ctx context.Context, form models.FormType, uniqueID, comments string) error
	PresignExport(ctx context.Context, fileName string) (api.Presigned, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config   *config.Config
	api      API
	dash     *dashboard.Dashboard
	exporter *export.Exporter
	meta     metadata.Repository
	history  exports.Repository
	health   pinger
	http     *http.Client
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time
	closers  []io.Closer

	mu      sync.Mutex
	mode    Mode
	session *models.Session
	records []models.Record
	view    dashboard.View
}

// NewApp opens local storage and wires every component from c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repos, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	var cache gateway.Cache
	if c.RedisAddr != "" {
		cache = gateway.NewRedisCache(gateway.NewRedisClient(c.RedisAddr, c.RedisPassword, c.RedisDB), c.CacheTTL, log)
	} else {
		mc, err := gateway.NewMemoryCache(c.CacheSize)
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
		cache = mc
	}

	gw, err := gateway.New(gateway.Options{
		BaseURL:    c.APIBaseURL,
		ServiceKey: c.ServiceKey,
		CacheTTL:   c.CacheTTL,
		Cache:      cache,
		Sessions:   storage.NewSessionStore(repos.Metadata),
		Log:        log,
	})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	hc, err := client.NewHealthClient(c.HealthAddr)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	apiClient := api.New(gw)
	a := &App{
		config: c,
		api:    apiClient,
		dash:   dashboard.New(apiClient, log),
		exporter: export.New(nil, log,
			export.WithRasterizer(export.NewBasicRasterizer(c.PDFScale), c.PDFScale),
			export.WithQuality(c.PDFQuality),
			export.WithImageTimeout(c.ImageTimeout)),
		meta:    repos.Metadata,
		history: repos.Exports,
		health:  hc,
		http:    &http.Client{Timeout: 2 * time.Minute},
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
		closers: []io.Closer{hc, repos},
		mode:    ModeOnline,
		view:    dashboard.View{Page: 1, PageSize: c.PageSize},
	}
	gw.SetNotificationHandler(func(msg string) { fmt.Fprintln(a.out, msg) })
	return a, nil
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

// Run restores the stored session and view, starts the online watcher and
// blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.restore(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	fmt.Fprintln(a.out, "Welcome to the valuation desk CLI (type 'help' for commands)")
	if !a.isLoggedIn() {
		_ = a.Login(ctx)
	}
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) restore(ctx context.Context) {
	s, err := a.api.Session(ctx)
	if err != nil {
		a.log.Warn(ctx, "stored session unreadable", "error", err)
	}
	var v dashboard.View
	found, err := metadata.GetJSON(ctx, a.meta, metadata.KeyView, &v)
	if err != nil {
		a.log.Warn(ctx, "stored view unreadable", "error", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = s
	if found {
		if v.PageSize <= 0 {
			v.PageSize = a.config.PageSize
		}
		a.view = v
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

func (a *App) identity() (models.Identity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return models.Identity{}, false
	}
	return a.session.Identity, true
}

func (a *App) online() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode == ModeOnline
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := ""
	if a.session != nil {
		s = a.session.Username + "@" + a.session.ClientID + " "
	}
	s += string(a.mode)
	return fmt.Sprintf("(%s)", s)
}

// StartOnlineStatusWatcher probes server health every interval until ctx is
// done and flips the mode on changes.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.health.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
