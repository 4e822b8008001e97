package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/josh-kwaku/account-ledger/internal/config"
	"github.com/josh-kwaku/account-ledger/internal/handler"
	"github.com/josh-kwaku/account-ledger/internal/lock"
	"github.com/josh-kwaku/account-ledger/internal/logging"
	"github.com/josh-kwaku/account-ledger/internal/redisstore"
	"github.com/josh-kwaku/account-ledger/internal/repository"
	"github.com/josh-kwaku/account-ledger/internal/server"
	"github.com/josh-kwaku/account-ledger/internal/service"
	"github.com/josh-kwaku/account-ledger/internal/service/transaction"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("ignoring .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("account-ledger", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := connectRedis(cfg)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	accounts := repository.NewAccountRepository(db)
	transactions := repository.NewTransactionRepository(db)
	users := repository.NewUserRepository(db)

	locks := lock.NewRedisProvider(rdb, cfg.LockKeyPrefix, cfg.LockRetryDelay)

	txnService := transaction.NewService(accounts, transactions, users, db)
	gateway := transaction.NewGateway(txnService, locks, cfg.LockOptions(), cfg.ProcessingDelay)
	accountService := service.NewAccountService(accounts, users, db, locks, cfg.LockOptions(), cfg.MaxAccountsPerUser)

	router := server.NewRouter(server.Handlers{
		Transactions: handler.NewTransactionHandler(gateway, txnService),
		Accounts:     handler.NewAccountHandler(accountService),
		Users:        handler.NewUserHandler(users),
		Health:       handler.NewHealthHandler(db, rdb),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      75 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr,
			"lock_wait", cfg.LockWaitTimeout, "lock_lease", cfg.LockLeaseTimeout, "processing_delay", cfg.ProcessingDelay)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var err error
	for i := range 30 {
		var db *sql.DB
		if db, err = repository.NewPostgresDB(context.Background(), cfg.DatabaseURL, pool); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}

func connectRedis(cfg *config.Config) (*redis.Client, error) {
	opts := redisstore.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}

	var err error
	for i := range 10 {
		var rdb *redis.Client
		if rdb, err = redisstore.New(context.Background(), opts); err == nil {
			return rdb, nil
		}
		slog.Info("waiting for redis", "attempt", i+1)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("connectRedis: gave up after 10 attempts: %w", err)
}
