package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSetting indicates an empty settings key.
var ErrInvalidSetting = errors.New("invalid setting")

// Setting reads a value by key. The boolean is false when the key is absent.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if !s.Available() || key == "" {
		return "", false, nil
	}

	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value
		FROM settings
		WHERE key = $1
	`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get setting: %w", err)
	}
	return value, true, nil
}

// UpsertSetting inserts the key or overwrites its value.
func (s *Store) UpsertSetting(ctx context.Context, key, value string) error {
	if !s.Available() {
		return ErrStoreUnavailable
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidSetting)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// EnsureSetting writes the value only when the key is absent and reports whether it did.
func (s *Store) EnsureSetting(ctx context.Context, key, value string) (bool, error) {
	if !s.Available() {
		return false, ErrStoreUnavailable
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("%w: key is required", ErrInvalidSetting)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO NOTHING
	`, key, value)
	if err != nil {
		return false, fmt.Errorf("ensure setting: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure setting rows affected: %w", err)
	}
	return affected > 0, nil
}
