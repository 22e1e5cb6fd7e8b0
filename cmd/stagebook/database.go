package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"stagebook/internal/logging"
)

const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// readiness bounds how long startup waits for Postgres to accept connections.
type readiness struct {
	pingTimeout    time.Duration
	maxWait        time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

var startupReadiness = readiness{
	pingTimeout:    5 * time.Second,
	maxWait:        30 * time.Second,
	initialBackoff: 500 * time.Millisecond,
	maxBackoff:     5 * time.Second,
}

// openDatabase opens the booking database pool and waits until it answers pings.
func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open booking database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := startupReadiness.wait(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.WithContext(ctx).Info().Int("max_open_conns", maxOpenConns).Msg("booking database ready")
	return db, nil
}

// wait pings until success, the deadline passes or ctx is cancelled.
func (p readiness) wait(ctx context.Context, db pinger) error {
	deadline := time.Now().Add(p.maxWait)
	backoff := p.initialBackoff

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, p.pingTimeout)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		if ctx.Err() != nil || time.Now().Add(backoff).After(deadline) {
			return fmt.Errorf("booking database unreachable after %d attempts: %w", attempt, err)
		}

		logging.WithContext(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("waiting for booking database")

		select {
		case <-ctx.Done():
			return fmt.Errorf("booking database wait cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, p.maxBackoff)
	}
}
