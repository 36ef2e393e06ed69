package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/safar/stonecart/internal/config"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/logger"
	"github.com/safar/stonecart/internal/seed"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Load config", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("Connect to database", zap.Error(err))
	}
	defer db.Close()

	if command == "seed" {
		admin := seed.Admin{
			Email:    cfg.Seed.AdminEmail,
			Name:     cfg.Seed.AdminName,
			Password: cfg.Seed.AdminPassword,
		}
		if _, err := seed.Run(ctx, db, admin, log); err != nil {
			log.Fatal("Seed database", zap.Error(err))
		}
		return
	}

	m, err := database.NewMigrator(ctx, db, log)
	if err != nil {
		log.Fatal("Create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if len(args) < 2 {
			log.Fatal("Number of steps required. Usage: migrate steps <n>")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatal("Invalid number of steps", zap.String("steps", args[1]))
		}
		err = m.Steps(n)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("Read version", zap.Error(verr))
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: migrate [flags] <command> [args]

Commands:
  up          Apply all pending migrations
  down        Roll back all migrations
  steps <n>   Apply n migrations (negative n rolls back)
  version     Print the current schema version
  seed        Insert sample products and the configured admin user

Flags:
`)
	flag.PrintDefaults()
}
