package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/streetfix/report-ingest/internal/api"
	"github.com/streetfix/report-ingest/pkg/reportingest/config"
)

// Config collects process-level settings from the environment. Component
// wiring lives in the config package; this struct only covers what the
// binary itself needs beyond config.WithEnv.
type Config struct {
	Port            string `env:"PORT" env-default:"8080"`
	ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"10"`
	LogLevel        string `env:"LOG_LEVEL" env-default:"info"`
}

func main() {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	serverConfig, err := config.Load(config.WithEnv(""))
	if err != nil {
		logger.Error("failed to load server configuration", "error", err)
		os.Exit(1)
	}

	svc, err := serverConfig.BuildService(logger)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Mount("/", api.NewReportHandler(svc, logger).Routes())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Info("report-ingest server starting",
			"port", cfg.Port,
			"environment", serverConfig.Environment,
			"storage", serverConfig.Storage.Type,
			"database", serverConfig.DatabaseType,
			"broker_enabled", serverConfig.Broker.URL != "")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
