package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MacroPulse/internal/domain/repository"
	"MacroPulse/internal/usecase"
	pkgch "MacroPulse/pkg/clickhouse"
	"MacroPulse/pkg/config"
	xhttp "MacroPulse/pkg/http"
	applogger "MacroPulse/pkg/logger"
)

const defaultRefreshInterval = 6 * time.Hour

// App encapsulates the application lifecycle: run the pipeline at startup,
// refresh it on a timer, and serve the compiled report over HTTP.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	pipeline   *usecase.ReportPipeline
	handler    xhttp.Handler
	chClient   *pkgch.Client
	publisher  repository.Publisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. chClient and
// publisher may be nil when the corresponding backends are disabled.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	pipeline *usecase.ReportPipeline,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	publisher repository.Publisher,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		pipeline:  pipeline,
		handler:   handler,
		chClient:  chClient,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	// First run happens before the refresh loop so the API is usually ready
	// as soon as the ingest completes. A failed first run is not fatal: the
	// API serves 503 until a later run succeeds.
	if err := a.pipeline.Run(ctx); err != nil {
		a.logger.Error("initial pipeline run failed", applogger.Error(err))
	}

	go a.refreshLoop(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) refreshLoop(ctx context.Context) {
	interval := a.cfg.Report.RefreshInterval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.pipeline.Run(ctx); err != nil {
				a.logger.Error("pipeline refresh failed", applogger.Error(err))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
