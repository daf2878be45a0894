package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pingboard/internal/config"
	"pingboard/internal/live"
	"pingboard/internal/metrics"
	"pingboard/internal/pinger"
	"pingboard/internal/web"

	"github.com/gin-gonic/gin"

	_ "pingboard/docs" // Ensure docs are imported
)

const shutdownTimeout = 10 * time.Second

// App encapsulates application dependencies
type App struct {
	router  *gin.Engine
	logger  *slog.Logger
	metrics *metrics.Metrics
	live    *live.Handler
	cfg     *config.Config
}

// NewApp creates a new application with injected dependencies
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Set Gin mode from configuration
	gin.SetMode(cfg.Server.GinMode)

	// Create Gin router
	router := gin.New()

	m := metrics.New()

	// Add middleware
	router.Use(gin.Recovery(), m.Middleware())

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(templates)

	app := &App{
		router:  router,
		logger:  logger,
		metrics: m,
		cfg:     cfg,
		live: live.NewHandler(logger,
			live.WithControllerOptions(
				pinger.WithInterval(cfg.Ping.Interval),
				pinger.WithLabel(cfg.Ping.Label),
				pinger.WithObserver(m.Observer()),
			),
			live.WithSessionGauge(m.LiveSessions),
		),
	}

	// Register routes
	app.registerRoutes()

	return app, nil
}

// Run starts the HTTP server and shuts it down gracefully when ctx ends
func (app *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
