/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the commission engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, config file, .env, environment)
  2. Initialize the logger
  3. Open the configured store
  4. Seed the guest catalog from catalog.path, if set
  5. Create API handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config file path (default: ./multicota.yaml when present)

STORES:
  sqlite    File database, schema managed by embedded migrations
            Use database.path=":memory:" for a throwaway database
  postgres  PostgreSQL via gorm, schema via AutoMigrate
  memory    Process memory, lost on exit

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  MULTICOTA_DATABASE_PATH=./data/prod.db ./server

  # Run against PostgreSQL
  MULTICOTA_DATABASE_DRIVER=postgres \
  MULTICOTA_DATABASE_DSN="host=localhost user=app dbname=multicota" ./server

  # Seed the catalog on startup
  MULTICOTA_CATALOG_PATH=./catalog.yaml ./server

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go, store/postgres/postgres.go: Stores
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/multicota/commission-engine/api"
	"github.com/multicota/commission-engine/commission"
	"github.com/multicota/commission-engine/commission/store"
	"github.com/multicota/commission-engine/config"
	"github.com/multicota/commission-engine/factory"
	"github.com/multicota/commission-engine/logger"
	"github.com/multicota/commission-engine/store/postgres"
	"github.com/multicota/commission-engine/store/sqlite"
)

type closableStore interface {
	commission.Store
	Close() error
}

type memoryStore struct{ *store.Memory }

func (memoryStore) Close() error { return nil }

func main() {
	// Flags
	configPath := flag.String("config", "", "Config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg.Log.Level)

	// Initialize store
	db, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.L.Error("failed to initialize database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Catalog.Path != "" {
		if err := seedCatalog(context.Background(), db, cfg.Catalog.Path); err != nil {
			logger.L.Warn("failed to seed catalog", "path", cfg.Catalog.Path, "error", err)
		}
	}

	// Initialize handler and router
	handler := api.NewHandler(db, cfg.Cache.TTL)
	router := api.NewRouter(handler, cfg.CORS.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.L.Info("server starting", "addr", cfg.Addr(), "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("server forced to shutdown", "error", err)
	}

	logger.L.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (closableStore, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memoryStore{store.NewMemory()}, nil
	default:
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, err
		}
		s, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// seedCatalog loads a catalog file into the guest owner's catalog.
func seedCatalog(ctx context.Context, db commission.Store, path string) error {
	products, err := factory.NewCatalogFactory().LoadFile(path)
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := db.SaveProduct(ctx, commission.GuestOwner, p); err != nil {
			return err
		}
	}
	logger.L.Info("catalog seeded", "path", path, "products", len(products))
	return nil
}
