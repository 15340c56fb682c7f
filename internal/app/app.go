// Package app provides application initialization and wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"

	httpAdapter "github.com/coastgrid/coastgrid/internal/adapters/http"
	"github.com/coastgrid/coastgrid/internal/adapters/metrics"
	"github.com/coastgrid/coastgrid/internal/adapters/shoreline"
	"github.com/coastgrid/coastgrid/internal/adapters/storage"
	"github.com/coastgrid/coastgrid/internal/adapters/store"
	tlsAdapter "github.com/coastgrid/coastgrid/internal/adapters/tls"
	"github.com/coastgrid/coastgrid/internal/adapters/watcher"
	"github.com/coastgrid/coastgrid/internal/application"
	"github.com/coastgrid/coastgrid/internal/config"
	"github.com/coastgrid/coastgrid/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Storage       output.ObjectStorage
	Store         *store.SQLiteStore
	Ledger        *application.Ledger
	Catalog       *application.Catalog
	HealthService *application.HealthService
	HTTPServer    *httpAdapter.Server
	TLSServer     *tlsAdapter.Server
	Watcher       *watcher.Watcher
	Metrics       *metrics.Collector
}

// New creates and initializes a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("coastgrid")
	}

	var metricsCollector output.MetricsCollector
	if app.Metrics != nil {
		metricsCollector = app.Metrics
	} else {
		metricsCollector = &output.NoOpMetrics{}
	}

	// Initialize shoreline object storage
	objStorage, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	app.Storage = objStorage

	// Initialize shoreline catalog over the storage backend
	loader := shoreline.NewLoader(objStorage, logger)
	app.Catalog = application.NewCatalog(logger, objStorage, loader, metricsCollector)

	// Initialize ledger persistence
	ledgerOpts := []application.LedgerOption{
		application.WithMetrics(metricsCollector),
		application.WithAreaBounds(cfg.Grid.MinArea, cfg.Grid.MaxArea),
	}
	if cfg.Store.Enabled() {
		ledgerStore, err := store.NewSQLiteStore(ctx, cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("opening ledger store: %w", err)
		}
		app.Store = ledgerStore
		ledgerOpts = append(ledgerOpts, application.WithStore(ledgerStore))
	}

	// Initialize the ROI ledger
	app.Ledger = application.NewLedger(logger, ledgerOpts...)

	// Initialize health service
	app.HealthService = application.NewHealthService(app.Ledger, app.Catalog)

	// Initialize HTTP server
	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		cfg.Grid,
		app.Ledger,
		app.Catalog,
		app.HealthService,
		logger,
	)

	// Mount metrics on the main router
	if app.Metrics != nil {
		app.HTTPServer.Router().Use(app.Metrics.Middleware)
		app.HTTPServer.Router().Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// Initialize TLS server if enabled
	if cfg.TLS.Enabled {
		tlsServer, err := tlsAdapter.NewServer(
			tlsAdapter.Config{
				Enabled:  cfg.TLS.Enabled,
				Domains:  cfg.TLS.Domains,
				Email:    cfg.TLS.Email,
				CacheDir: cfg.TLS.CacheDir,
				Staging:  cfg.TLS.Staging,
				DNS: tlsAdapter.DNSConfig{
					SubscriptionID:    cfg.TLS.DNS.SubscriptionID,
					ResourceGroupName: cfg.TLS.DNS.ResourceGroupName,
					ClientID:          cfg.TLS.DNS.ClientID,
				},
			},
			app.HTTPServer.Router(),
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("initializing TLS: %w", err)
		}
		app.TLSServer = tlsServer
	}

	// Initialize file watcher for shoreline hot-reload
	if cfg.Storage.Type == "local" && cfg.Storage.Watch {
		w, err := watcher.New(
			watcher.Config{
				Paths: []string{cfg.Storage.LocalPath},
			},
			app.handleFileEvent,
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize file watcher", "error", err)
		} else {
			app.Watcher = w
		}
	}

	return app, nil
}

// Start starts all application components.
func (a *App) Start(ctx context.Context) error {
	// Restore the ledger from its last snapshot
	if a.Store != nil {
		if err := a.Ledger.Restore(ctx); err != nil {
			a.Logger.Warn("failed to restore ledger", "error", err)
		}
	}

	// Index the available shoreline sources
	if err := a.Catalog.Refresh(ctx); err != nil {
		a.Logger.Warn("failed to refresh shoreline catalog", "error", err)
	}

	// Start file watcher
	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.Warn("failed to start file watcher", "error", err)
		}
	}

	// Start server
	if a.Config.TLS.Enabled && a.TLSServer != nil {
		return a.TLSServer.ListenAndServe(a.Config.Server.Address())
	}
	return a.HTTPServer.Start()
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	// Stop watcher
	if a.Watcher != nil {
		_ = a.Watcher.Stop()
	}

	// Shutdown HTTP server
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown error", "error", err)
	}

	// Persist the ledger before closing the store
	if a.Store != nil {
		if err := a.Ledger.Persist(ctx); err != nil {
			a.Logger.Error("failed to persist ledger", "error", err)
		}
		if err := a.Store.Close(); err != nil {
			a.Logger.Error("failed to close ledger store", "error", err)
		}
	}

	return nil
}

// handleFileEvent handles file system events by rebuilding the source
// index. The catalog indexes whole files, so every event maps to a
// refresh regardless of operation.
func (a *App) handleFileEvent(ctx context.Context, event watcher.Event) error {
	a.Logger.Info("shoreline file event", "path", event.Path, "operation", event.Operation.String())
	return a.Catalog.Refresh(ctx)
}

// initStorage initializes the appropriate storage adapter.
func initStorage(ctx context.Context, cfg config.StorageConfig) (output.ObjectStorage, error) {
	switch cfg.Type {
	case "local":
		return storage.NewLocalStorage(cfg.LocalPath), nil

	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})

	case "azure":
		return storage.NewAzureStorage(storage.AzureConfig{
			Container:        cfg.Azure.Container,
			AccountName:      cfg.Azure.AccountName,
			AccountKey:       cfg.Azure.AccountKey,
			ConnectionString: cfg.Azure.ConnectionString,
			Prefix:           cfg.Azure.Prefix,
		})

	case "http":
		return storage.NewHTTPStorage(storage.HTTPConfig{
			BaseURL:   cfg.HTTP.BaseURL,
			IndexFile: cfg.HTTP.IndexFile,
			Timeout:   cfg.HTTP.Timeout,
			Username:  cfg.HTTP.Username,
			Password:  cfg.HTTP.Password,
		}), nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
