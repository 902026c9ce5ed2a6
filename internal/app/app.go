// Package app bootstraps the flatchat backend process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/flatchat/backend/internal/config"
	"github.com/flatchat/backend/internal/handlers"
	"github.com/flatchat/backend/internal/httpserver"
	"github.com/flatchat/backend/internal/middleware"
)

// Run dispatches the flatchat subcommands.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or init")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "init":
		return initData(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	deps := buildDependencies(cfg)

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	handlers.RegisterRoutes(router, deps)

	handler := middleware.RequestLogger(logger)(router)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// initData creates the collection files and upload directories ahead of the
// first request. serve self-initializes missing files on first load, so this
// is idempotent preparation rather than a prerequisite.
func initData(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	users, records := newCollections(cfg)
	if _, err := users.Load(ctx); err != nil {
		return fmt.Errorf("init users collection: %w", err)
	}
	if _, err := records.Load(ctx); err != nil {
		return fmt.Errorf("init messages collection: %w", err)
	}

	for _, dir := range []string{cfg.UploadsDir, cfg.UserImagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	fmt.Printf("initialized %s, %s, %s/, %s/\n", cfg.UsersFile, cfg.MessagesFile, cfg.UploadsDir, cfg.UserImagesDir)
	return nil
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
