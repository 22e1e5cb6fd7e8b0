package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"stagebook/internal/config"
	"stagebook/internal/logging"
)

const usage = "usage: migrate [up|down|version|force N]"

func main() {
	logger := logging.New(logging.Config{Level: "info", Format: "text"})
	logging.SetGlobalLogger(logger)

	if err := run(logger, os.Args[1:]); err != nil {
		logger.Fatal(err, "migration failed")
	}
}

func run(logger *logging.Logger, args []string) error {
	log := logger.Zerolog()
	if len(args) == 0 {
		return errors.New(usage)
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	if dbCfg.URL == "" {
		return errors.New("DATABASE_URL (or DB_USER and DB_NAME) is required")
	}

	db, err := sql.Open("postgres", dbCfg.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	sourceURL, err := migrationsSource()
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("migrations applied")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("roll back migrations: %w", err)
		}
		logger.Info("migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("current schema version")
	case "force":
		if len(args) != 2 {
			return errors.New(usage)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		log.Info().Int("version", version).Msg("schema version forced")
	default:
		return errors.New(usage)
	}
	return nil
}

// migrationsSource resolves MIGRATIONS_PATH, defaulting to ./migrations.
func migrationsSource() (string, error) {
	path := os.Getenv("MIGRATIONS_PATH")
	if path == "" {
		path = "migrations"
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve migrations path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return "", fmt.Errorf("migrations directory: %w", err)
	}
	return "file://" + filepath.ToSlash(absPath), nil
}
