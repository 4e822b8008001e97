package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/josh-kwaku/account-ledger/internal/config"
	"github.com/josh-kwaku/account-ledger/internal/logging"
	"github.com/josh-kwaku/account-ledger/internal/repository"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding the *.up.sql / *.down.sql files")
	down := flag.Bool("down", false, "revert the latest migration instead of applying pending ones")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("ignoring .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("account-ledger-migrate", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrateFn := repository.MigrateUp
	if *down {
		migrateFn = repository.MigrateDown
	}
	if err := migrateFn(ctx, db, *dir); err != nil {
		slog.Error("migration failed", "dir", *dir, "down", *down, "error", err)
		os.Exit(1)
	}
}
