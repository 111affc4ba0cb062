// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"codeberg.org/oliverandrich/langeng/internal/config"
	"codeberg.org/oliverandrich/langeng/internal/database"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/server"
	"codeberg.org/oliverandrich/langeng/internal/services/verification"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "langeng",
		Usage:   "LanGeng social API server",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the API server",
				Action: server.Run,
			},
			{
				Name:  "migrate",
				Usage: "Manage the database schema",
				Commands: []*cli.Command{
					{Name: "up", Usage: "Apply all pending migrations", Action: migrateUp},
					{Name: "down", Usage: "Roll back the latest migration", Action: migrateDown},
					{Name: "status", Usage: "Print the current schema version", Action: migrateStatus},
				},
			},
			{
				Name:   "purge-verifications",
				Usage:  "Delete unconsumed verification entries that have expired",
				Action: purgeVerifications,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDatabase opens the configured database, which applies pending
// migrations.
func openDatabase(cmd *cli.Command) (*config.Config, *repository.Repository, func(), error) {
	cfg := config.NewFromCLI(cmd)
	server.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, repository.New(db), func() { _ = db.Close() }, nil
}

func migrateUp(_ context.Context, cmd *cli.Command) error {
	_, repo, closeDB, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDB()
	return printVersion(repo)
}

func migrateDown(_ context.Context, cmd *cli.Command) error {
	_, repo, closeDB, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := database.MigrateDown(repo.DB().DB); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return printVersion(repo)
}

func migrateStatus(_ context.Context, cmd *cli.Command) error {
	_, repo, closeDB, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDB()
	return printVersion(repo)
}

func printVersion(repo *repository.Repository) error {
	version, err := database.MigrationVersion(repo.DB().DB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Printf("schema version %d\n", version)
	return nil
}

func purgeVerifications(ctx context.Context, cmd *cli.Command) error {
	cfg, repo, closeDB, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := verification.NewService(repo, cfg.Verification.TTL).PurgeExpired(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("purged %d expired verification entries\n", n)
	return nil
}
