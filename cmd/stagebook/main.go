package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stagebook/internal/config"
	"stagebook/internal/logging"
	"stagebook/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.SetGlobalLogger(logger)

	if err := run(cfg); err != nil {
		logger.Fatal(err, "server stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = openDatabase(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := bootstrapSettings(ctx, db, store.New(db)); err != nil {
			return err
		}
	} else {
		logging.WithContext(ctx).Warn().Msg("no database configured; reads return empty results and writes fail")
	}

	app, err := newApplication(ctx, cfg, store.New(db))
	if err != nil {
		return err
	}

	if app.scheduler != nil {
		app.scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			app.scheduler.Stop(stopCtx)
		}()
		logging.WithContext(ctx).Info().Str("schedule", cfg.Outreach.Schedule).Msg("outreach scheduler started")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           app.handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.WithContext(ctx).Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.WithContext(shutdownCtx).Info().Msg("server stopped cleanly")
	return nil
}
