package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/gamegraph/internal/adapters/http/api"
	"github.com/okian/gamegraph/internal/adapters/http/swagger"
	"github.com/okian/gamegraph/internal/adapters/steam"
	app "github.com/okian/gamegraph/internal/app"
	"github.com/okian/gamegraph/internal/config"
	"github.com/okian/gamegraph/pkg/logger"
	"github.com/okian/gamegraph/pkg/metrics"
)

// HTTP server timeout constants. Friend views fan out to many upstream
// calls, so the write timeout is well above the per-call timeout.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 60 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger format comes from config, so it is not available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	handler, svc, err := newHandler(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newHandler wires the Steam client, the engine and every HTTP route. The
// returned service is started and must be stopped by the caller.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, *app.Service, error) {
	// Upstream latency never exceeds the per-call timeout.
	metrics.Init(metrics.WithLatencyCeiling(float64(cfg.RequestTimeoutMS)))

	client := steam.New(cfg.SteamAPIKey,
		steam.WithBaseURL(cfg.SteamBaseURL),
		steam.WithTimeout(cfg.RequestTimeout()),
		steam.WithLanguage(cfg.Language),
		steam.WithLogger(log.Named("steam")),
	)

	svc := app.New(client,
		app.WithLogger(log),
		app.WithFanoutLimit(cfg.FanoutLimit),
		app.WithMinAverageHours(cfg.MinAveragePlaytimeHours),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()

	// Register the ReDoc page and OpenAPI document
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	api.NewServer(svc, svc, api.WithLogger(log.Named("api"))).Register(ctx, mux)

	return mux, svc, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
