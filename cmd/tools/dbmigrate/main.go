// cmd/tools/dbmigrate/main.go
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/db"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		configPath = flag.String("config", "", "Path to the YAML config file (used when -db is empty)")
		dbPath     = flag.String("db", "", "Path to SQLite database")
		command    = flag.String("command", "", "Command to run (up, down, steps, version)")
		steps      = flag.Int("n", 0, "Number of steps for the steps command")
	)
	flag.Parse()

	if *command == "" || (*dbPath == "" && *configPath == "") {
		fmt.Fprintln(os.Stderr, "-command and one of -db or -config are required:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	path, err := resolveDBPath(*dbPath, *configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	// db.New would apply every migration on open, so go through sql.Open.
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to open database")
	}
	defer sqlDB.Close()

	m, err := db.Migrator(sqlDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrate instance")
	}

	if err := runCommand(m, *command, *steps); err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("Migration failed")
	}
}

func resolveDBPath(dbPath, configPath string) (string, error) {
	if dbPath == "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return "", fmt.Errorf("read config: %w", err)
		}
		cfg, err := config.Parse(data)
		if err != nil {
			return "", err
		}
		dbPath = cfg.Database.Filename
		if dbPath == "" {
			return "", errors.New("config has no database filename")
		}
	}
	return filepath.Abs(dbPath)
}

func runCommand(m *migrate.Migrate, command string, steps int) error {
	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Info().Msg("Successfully ran migrations up")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Info().Msg("Successfully ran migrations down")
	case "steps":
		if steps == 0 {
			return errors.New("steps requires -n")
		}
		if err := m.Steps(steps); err != nil {
			return err
		}
		log.Info().Int("steps", steps).Msg("Successfully applied migration steps")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("No migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current version")
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}
