package main

import (
	"fmt"
	"os"
	"strconv"

	"expensely/internal/config"
	"expensely/internal/database"
	"expensely/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: migrate <up|down|version> [N]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			logger.Get().Warnf("database close error: %v", err)
		}
	}()

	dir := database.DefaultMigrationsDir
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		dir = v
	}

	switch command := os.Args[1]; command {
	case "up":
		return dbManager.RunMigrations(dir)

	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 1 {
				return fmt.Errorf("invalid step count: %q", os.Args[2])
			}
		}
		return dbManager.RollbackMigrations(dir, steps)

	case "version":
		version, dirty, err := dbManager.MigrationVersion(dir)
		if err != nil {
			return err
		}
		logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)
		return nil

	default:
		return fmt.Errorf("unknown command: %s (use up, down, or version)", command)
	}
}
