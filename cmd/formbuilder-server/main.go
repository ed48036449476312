package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-formbuilder/internal/httpapi"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

const (
	defaultAddr      = ":8000"
	defaultSQLiteDSN = "formbuilder.db"
	shutdownTimeout  = 10 * time.Second
)

// Config holds environment configuration
type Config struct {
	Addr     string
	DBDriver string
	DBDSN    string
	LogLevel string
}

func main() {
	config := parseFlags(loadEnvironmentConfig())
	logger := initializeLogger(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.Open(config.DBDriver,
		storage.WithDSN(config.DBDSN),
		storage.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("opening storage: %v", err)
	}
	defer repo.Close()

	api, err := httpapi.New(httpapi.Config{Repository: repo, Logger: logger})
	if err != nil {
		log.Fatalf("building api: %v", err)
	}

	srv := &http.Server{
		Addr:              config.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("formbuilder server listening", "addr", config.Addr, "driver", config.DBDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
	logger.Info("formbuilder server exited")
}

// loadEnvironmentConfig reads FORMBUILDER_* variables, loading .env first
// when present.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := Config{
		Addr:     os.Getenv("FORMBUILDER_ADDR"),
		DBDriver: os.Getenv("FORMBUILDER_DB_DRIVER"),
		DBDSN:    os.Getenv("FORMBUILDER_DB_DSN"),
		LogLevel: os.Getenv("FORMBUILDER_LOG_LEVEL"),
	}
	if config.Addr == "" {
		config.Addr = defaultAddr
	}
	if config.DBDriver == "" {
		config.DBDriver = storage.DriverMemory
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	return config
}

// parseFlags lets command line flags override the environment.
func parseFlags(config Config) Config {
	addr := flag.String("addr", config.Addr, "listen address (overrides $FORMBUILDER_ADDR)")
	driver := flag.String("db-driver", config.DBDriver, "storage driver: memory, sqlite or postgres (overrides $FORMBUILDER_DB_DRIVER)")
	dsn := flag.String("db-dsn", config.DBDSN, "database DSN or SQLite file (overrides $FORMBUILDER_DB_DSN)")
	level := flag.String("log-level", config.LogLevel, "debug, info, warn or error (overrides $FORMBUILDER_LOG_LEVEL)")
	flag.Parse()

	config.Addr = *addr
	config.DBDriver = *driver
	config.DBDSN = *dsn
	config.LogLevel = *level
	if config.DBDSN == "" && strings.EqualFold(config.DBDriver, storage.DriverSQLite) {
		config.DBDSN = defaultSQLiteDSN
	}
	return config
}

func initializeLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
