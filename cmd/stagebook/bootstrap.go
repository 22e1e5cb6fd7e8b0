package main

import (
	"context"
	"database/sql"
	"fmt"

	"stagebook/internal/app/settings"
	"stagebook/internal/logging"
	"stagebook/internal/models"
)

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type settingSeeder interface {
	EnsureSetting(ctx context.Context, key, value string) (bool, error)
}

// bootstrapSettings seeds the default outreach template once the schema is migrated.
func bootstrapSettings(ctx context.Context, db queryRower, seeder settingSeeder) error {
	exists, err := tableExists(ctx, db, "settings")
	if err != nil {
		return fmt.Errorf("check settings table: %w", err)
	}
	if !exists {
		logging.WithContext(ctx).Warn().Msg("settings table missing; run migrations")
		return nil
	}

	inserted, err := seeder.EnsureSetting(ctx, models.MessageTemplateKey, settings.DefaultMessageTemplate)
	if err != nil {
		return fmt.Errorf("seed message template: %w", err)
	}
	if inserted {
		logging.WithContext(ctx).Info().Msg("seeded default message template")
	}
	return nil
}

func tableExists(ctx context.Context, q queryRower, table string) (bool, error) {
	var name sql.NullString
	if err := q.QueryRowContext(ctx, `SELECT to_regclass($1)`, table).Scan(&name); err != nil {
		return false, err
	}
	return name.Valid, nil
}
