package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrStoreUnavailable is returned by writes when no database is configured.
	ErrStoreUnavailable = errors.New("database is not configured")
	// ErrConstraintViolation wraps foreign-key and uniqueness failures reported by Postgres.
	ErrConstraintViolation = errors.New("constraint violation")
)

// Store provides persistence backed by Postgres.
// A Store built with a nil handle answers reads with empty results and rejects writes.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Available reports whether a database handle is configured.
func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

// Ping checks the connection. It returns ErrStoreUnavailable when no database is configured.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Available() {
		return ErrStoreUnavailable
	}
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// constraintError folds a Postgres constraint failure into ErrConstraintViolation,
// keeping the server-provided detail when there is one.
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.Detail)
	}
	return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// normalizeList trims values, drops blanks and collapses case-insensitive duplicates
// while keeping the first-seen order.
func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
