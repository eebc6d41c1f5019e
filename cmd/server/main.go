/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the financial planning engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize logger
  3. Load engine configuration (optional JSON file)
  4. Initialize store (SQLite or in-memory)
  5. Create API handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: finance.db)
              ":memory:" for an in-memory SQLite database
              "memory" for the plain in-memory store
  -config     Engine configuration JSON (thresholds, caps, multipliers)
  -log-level  debug | info | warn | error (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/finance.db"

  # Run with in-memory store and custom thresholds
  ./server -db=memory -config=engine.json

SEE ALSO:
  - api/server.go: Router configuration
  - factory/engine.go: Engine configuration schema
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/finance-engine/api"
	"github.com/warp/finance-engine/factory"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/finance/store"
	"github.com/warp/finance-engine/logger"
	"github.com/warp/finance-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "finance.db", `SQLite database path, ":memory:", or "memory" for the in-memory store`)
	configPath := flag.String("config", "", "Engine configuration JSON file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New()
	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", *logLevel).Msg("Invalid log level")
	}
	log = log.Level(level)
	zerolog.SetGlobalLevel(level)

	// Engine configuration
	cfg := factory.DefaultEngineConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to read engine config")
		}
		if cfg, err = factory.ParseEngineConfig(data); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("Invalid engine config")
		}
		log.Info().Str("path", *configPath).Msg("Engine config loaded")
	}

	// Initialize store
	st, closeStore, err := openStore(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", *dbPath).Msg("Failed to initialize store")
	}
	defer closeStore()

	handler := api.NewHandler(st, cfg.Build(), log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", *port).Str("db", *dbPath).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// openStore picks the store for the -db flag.
func openStore(path string) (finance.Store, func(), error) {
	if path == "memory" {
		return store.NewMemory(), func() {}, nil
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}
