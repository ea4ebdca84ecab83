// Package server initializes and runs the vault server: it opens the
// metadata store, runs migrations, bootstraps the admin account, starts the
// session reaper and serves the HTTP API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/httpapi"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/services"
	"github.com/dmitrijs2005/docvault/internal/server/sessions"
	"github.com/dmitrijs2005/docvault/internal/server/storage"
)

// reaperInterval is how often abandoned multipart sessions are swept.
const reaperInterval = 10 * time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	gateway  *storage.S3Gateway
	registry *sessions.Registry

	userService   *services.UserService
	uploadService *services.UploadService
	treeService   *services.TreeService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	gateway := storage.NewS3Gateway(storage.Config{
		RootUser:      cfg.S3RootUser,
		RootPassword:  cfg.S3RootPassword,
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		BaseEndpoint:  cfg.S3BaseEndpoint,
		PresignExpiry: cfg.PresignExpiry,
	})
	registry := sessions.NewRegistry(cfg.SessionGracePeriod)

	us := services.NewUserService(db, rm, cfg.SecretKey, cfg.AccessTokenValidityDuration)
	if err := us.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("admin bootstrap error: %w", err)
	}

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		gateway:       gateway,
		registry:      registry,
		userService:   us,
		uploadService: services.NewUploadService(db, rm, gateway, registry, logger),
		treeService:   services.NewTreeService(db, rm, gateway, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	handlers := httpapi.NewHandlers(app.userService, app.uploadService, app.treeService, app.logger)
	router := httpapi.NewRouter(handlers, []byte(app.config.SecretKey))
	s := httpapi.NewServer(app.config.EndpointAddr, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startSessionReaper sweeps abandoned multipart sessions and aborts their
// store-side uploads so parts do not accumulate forever.
func (app *App) startSessionReaper(ctx context.Context) {
	app.registry.RunReaper(ctx, reaperInterval, func(ctx context.Context, s *sessions.Session) {
		app.logger.Info(ctx, "reaping abandoned session", "session_id", s.ID, "storage_key", s.StorageKey)
		if err := app.gateway.AbortSession(ctx, s.StorageKey, s.ID); err != nil {
			app.logger.Error(ctx, "abort of abandoned session failed", "session_id", s.ID, "error", err.Error())
		}
	})
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSessionReaper(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
