package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ledgerline/ledgerline-backend/pkg/config"
	"github.com/ledgerline/ledgerline-backend/pkg/db"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	"github.com/ledgerline/ledgerline-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})
	logg.Info(ctx, "migrate starting")

	var runErr error
	switch *cmd {
	case "create", "validate":
		runErr = runFileCommand(*cmd, *dir, *name)
	case "up", "down", "status", "version":
		runErr = runDBCommand(ctx, cfg, logg, *cmd, *dir, *version)
	default:
		runErr = fmt.Errorf("unknown -cmd value %q", *cmd)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

// runFileCommand covers the commands that only touch the migrations
// directory and never need a database.
func runFileCommand(cmd, dir, name string) error {
	switch cmd {
	case "create":
		if name == "" {
			return errors.New("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(dir, name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Println("created migration:", path)
		return nil
	default:
		if err := migrate.ValidateDir(dir); err != nil {
			return fmt.Errorf("migration validation: %w", err)
		}
		fmt.Println("migration validation passed")
		return nil
	}
}

func runDBCommand(ctx context.Context, cfg *config.Config, logg *logger.Logger, cmd, dir, version string) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	if cmd == "version" {
		if version == "" {
			return errors.New("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, dir, version)
	}
	return migrate.Run(ctx, sqlDB, dir, cmd)
}
