// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/orderlist/internal/api"
	"github.com/starford/orderlist/internal/batch"
	"github.com/starford/orderlist/internal/catalog"
	"github.com/starford/orderlist/internal/export"
	"github.com/starford/orderlist/internal/itemservice"
	"github.com/starford/orderlist/internal/ledger"
	"github.com/starford/orderlist/internal/mcpserver"
	"github.com/starford/orderlist/internal/metrics"
	"github.com/starford/orderlist/internal/notify"
	"github.com/starford/orderlist/internal/raster"
	"github.com/starford/orderlist/internal/sse"
	"github.com/starford/orderlist/internal/storage"
	"github.com/starford/orderlist/internal/watch"
)

// core is the rendering pipeline shared by every mode.
type core struct {
	icons      *catalog.Catalog
	rasterizer *raster.Rasterizer
	composer   *export.Composer
	metrics    *metrics.Metrics
	ledgerOpts []ledger.Option
}

func newCore(cfg *Config) *core {
	icons := catalog.Default()
	r := raster.New(icons,
		raster.WithScale(cfg.Export.Scale),
		raster.WithMaxSize(cfg.Export.MaxIconPx))
	c := export.NewComposer(r,
		export.WithConcurrency(cfg.Export.Concurrency),
		export.WithTimeout(cfg.Export.Timeout),
		export.WithDateLayout(cfg.Export.DateFormat),
		export.WithPageSize(cfg.Export.PageSize))
	return &core{
		icons:      icons,
		rasterizer: r,
		composer:   c,
		metrics:    metrics.New(),
		ledgerOpts: []ledger.Option{ledger.WithTimeLayout(cfg.Ledger.TimeFormat)},
	}
}

// setup applies options, installs the JSON logger and prepares the output dir.
func setup(opts []Option) (*application, *slog.Logger, *storage.FS, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	outDir := cfg.Output.Path
	if app.outDir != "" {
		outDir = app.outDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create output dir: %w", err)
	}
	store, err := storage.NewFS(outDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init storage: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("output_path", store.Root()),
		slog.String("page_size", cfg.Export.PageSize),
		slog.Int("concurrency", cfg.Export.Concurrency),
		slog.String("log_level", cfg.App.LogLevel.String()))
	return app, logger, store, nil
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, store, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	c := newCore(cfg)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Item service over an in-memory ledger.
	slot := notify.NewSlot(broker.PublishNotification)
	svc := itemservice.NewService(ledger.New(c.icons, c.ledgerOpts...), slot, c.composer,
		itemservice.WithEvents(broker),
		itemservice.WithMetrics(c.metrics),
		itemservice.WithLogger(logger))

	apiRouter := api.NewRouter(svc, api.NewIconHandler(c.icons, c.rasterizer), store,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", c.metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		waitForShutdown(gCtx, logger)

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the order list over MCP stdio. Logs go to stderr because
// stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, logger, store, err := setup(opts)
	if err != nil {
		return err
	}
	c := newCore(app.config)

	svc := itemservice.NewService(ledger.New(c.icons, c.ledgerOpts...), notify.NewSlot(nil), c.composer,
		itemservice.WithMetrics(c.metrics),
		itemservice.WithLogger(logger))

	logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(svc, c.icons, store).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// RunExport writes the PDF for a list file. With WithWatch it keeps running
// and re-exports on every change until a shutdown signal arrives.
func RunExport(ctx context.Context, opts ...Option) error {
	app, logger, store, err := setup(opts)
	if err != nil {
		return err
	}
	if app.listPath == "" {
		return fmt.Errorf("list file is required")
	}
	c := newCore(app.config)
	runner := batch.NewRunner(c.icons, c.composer, store, c.metrics, logger, c.ledgerOpts...)

	runOnce := func(ctx context.Context) error {
		rep, err := runner.Run(ctx, app.listPath)
		if err != nil {
			logger.Error("export failed",
				slog.String("list", app.listPath),
				slog.String("error", err.Error()))
			return err
		}
		for _, n := range rep.Notices {
			logger.Debug("list entry",
				slog.Int("line", n.Line),
				slog.String("name", n.Name),
				slog.String("kind", n.Kind),
				slog.String("message", n.Message))
		}
		return nil
	}

	if !app.watch {
		return runOnce(ctx)
	}

	// In watch mode a failed export is logged and the next change retried.
	_ = runOnce(ctx)

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stop := context.WithCancel(gCtx)
	defer stop()

	g.Go(func() error {
		return watch.File(watchCtx, app.listPath, watch.DefaultDebounce, logger, func() {
			_ = runOnce(watchCtx)
		})
	})

	g.Go(func() error {
		waitForShutdown(watchCtx, logger)
		stop()
		return nil
	})

	return g.Wait()
}

// waitForShutdown blocks until SIGINT/SIGTERM or ctx cancellation.
func waitForShutdown(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}
