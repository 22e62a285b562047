// Package server initializes and runs the valuation desk backend. It opens
// the databases, applies migrations, bootstraps the admin account, and runs
// the JSON API next to the gRPC health service until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/valuationdesk/internal/logging"
	"github.com/dmitrijs2005/valuationdesk/internal/server/config"
	"github.com/dmitrijs2005/valuationdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/valuationdesk/internal/server/repositories/records"
	"github.com/dmitrijs2005/valuationdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/valuationdesk/internal/server/services"

	gs "github.com/dmitrijs2005/valuationdesk/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	mongo         *mongo.Client
	userService   *services.UserService
	recordService *services.RecordService
	exportService *services.ExportService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var opts []repomanager.Option
	var mc *mongo.Client
	if c.MongoURI != "" {
		mc, err = mongo.Connect(ctx, options.Client().ApplyURI(c.MongoURI))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("mongo init error: %w", err)
		}
		mdb := mc.Database(c.MongoDatabase)
		if err := records.NewMongoRepository(mdb).EnsureIndexes(ctx); err != nil {
			_ = mc.Disconnect(ctx)
			_ = db.Close()
			return nil, fmt.Errorf("mongo index error: %w", err)
		}
		opts = append(opts, repomanager.WithMongoRecords(mdb))
		logger.Info(ctx, "records stored in mongo", "database", c.MongoDatabase)
	}

	rm := repomanager.NewPostgresRepositoryManager(opts...)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app := &App{
		config:        c,
		logger:        logger,
		db:            db,
		mongo:         mc,
		userService:   services.NewUserService(db, rm, c),
		recordService: services.NewRecordService(db, rm),
		exportService: services.NewExportService(c),
	}

	if created, err := app.userService.EnsureAdmin(ctx, c.AdminClientID, c.AdminUsername, c.AdminPassword); err != nil {
		logger.Error(ctx, "admin bootstrap failed", "error", err)
	} else if created {
		logger.Info(ctx, "admin account created", "clientId", c.AdminClientID, "username", c.AdminUsername)
	}

	if n, err := app.userService.PurgeExpiredTokens(ctx); err != nil {
		logger.Warn(ctx, "refresh token purge failed", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "expired refresh tokens purged", "count", n)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.HealthAddrGRPC, app.logger, app.db)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	api := httpapi.NewServer(app.userService, app.recordService, app.exportService, app.logger, httpapi.Options{
		AllowedOrigins: app.config.CORSOrigins,
		ClientURL:      app.config.ClientURL,
		BodyLimit:      app.config.BodyLimit,
	})

	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if app.mongo != nil {
		if err := app.mongo.Disconnect(ctx); err != nil {
			app.logger.Warn(ctx, "mongo disconnect failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
}
