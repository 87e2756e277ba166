// Package server initializes and runs the application: it connects to the
// database, applies migrations, wires services to the HTTP API, and handles
// graceful shutdown.
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

	"github.com/dmitrijs2005/premio/internal/logging"
	"github.com/dmitrijs2005/premio/internal/server/config"
	"github.com/dmitrijs2005/premio/internal/server/httpapi"
	"github.com/dmitrijs2005/premio/internal/server/predictor"
	"github.com/dmitrijs2005/premio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/premio/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm, cfg)
	predictionService := services.NewPredictionService(db, rm, selectPredictor(cfg))
	exportService := services.NewExportService(db, rm, cfg)

	httpServer := httpapi.NewServer(cfg, logger, userService, predictionService, exportService)

	return &App{config: cfg, logger: logger, db: db, httpServer: httpServer}, nil
}

// selectPredictor returns the remote estimator when a scoring endpoint is
// configured, the built-in heuristic otherwise.
func selectPredictor(cfg *config.Config) predictor.Predictor {
	if cfg.PredictorURL != "" {
		return predictor.NewRemote(cfg.PredictorURL, cfg.PredictorTimeout)
	}
	return predictor.NewHeuristic()
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

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
