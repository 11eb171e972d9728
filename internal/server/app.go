// Package server initializes and runs the application: it opens the
// database, runs migrations, wires the services, the mail dispatcher and
// the listings cache, and starts the HTTP server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/bienesraices/internal/dbx"
	"github.com/dmitrijs2005/bienesraices/internal/logging"
	"github.com/dmitrijs2005/bienesraices/internal/server/cache"
	"github.com/dmitrijs2005/bienesraices/internal/server/config"
	"github.com/dmitrijs2005/bienesraices/internal/server/httpapi"
	"github.com/dmitrijs2005/bienesraices/internal/server/mailer"
	"github.com/dmitrijs2005/bienesraices/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bienesraices/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	httpServer *httpapi.HTTPServer
	dispatcher *mailer.Dispatcher
	listings   *cache.RedisStore
}

// NewApp builds the whole object graph from config.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := dbx.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repomanager init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	resendMailer := mailer.NewResendMailer(cfg.ResendAPIKey, cfg.EmailSender, cfg.PublicBaseURL)
	dispatcher := mailer.NewDispatcher(resendMailer, logger.With("module", "mailer"))

	listings := cache.NewRedisStore(cfg.RedisAddr, cfg.ListingCacheTTL)

	as := services.NewAccountService(db, rm, dispatcher, cfg)
	ps := services.NewPropertyService(db, rm, listings, logger, cfg)
	ms := services.NewMessageService(db, rm)

	httpServer := httpapi.NewHTTPServer(cfg, logger, as, ps, ms)

	return &App{
		config:     cfg,
		logger:     logger,
		httpServer: httpServer,
		dispatcher: dispatcher,
		listings:   listings,
	}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run starts the server and blocks until shutdown completes. Pending emails
// are drained before returning.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.dispatcher.Close()
	if err := app.listings.Close(); err != nil {
		app.logger.Error(ctx, "redis close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
