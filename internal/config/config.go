package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/josh-kwaku/account-ledger/internal/lock"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LockKeyPrefix    string        `env:"LOCK_KEY_PREFIX" envDefault:"account-lock:"`
	LockWaitTimeout  time.Duration `env:"LOCK_WAIT_TIMEOUT" envDefault:"1s"`
	LockLeaseTimeout time.Duration `env:"LOCK_LEASE_TIMEOUT" envDefault:"15s"`
	LockRetryDelay   time.Duration `env:"LOCK_RETRY_DELAY" envDefault:"50ms"`

	// ProcessingDelay simulates a slow downstream call and is held inside the lock.
	ProcessingDelay    time.Duration `env:"PROCESSING_DELAY" envDefault:"0s"`
	MaxAccountsPerUser int           `env:"MAX_ACCOUNTS_PER_USER" envDefault:"10"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.LockWaitTimeout <= 0 || cfg.LockLeaseTimeout <= 0 {
		return nil, fmt.Errorf("config.Load: lock timeouts must be positive")
	}
	return &cfg, nil
}

func (c *Config) LockOptions() lock.Options {
	return lock.Options{Wait: c.LockWaitTimeout, Lease: c.LockLeaseTimeout}
}

// LoadDotEnv copies the variables in path into the process environment.
// Variables that are already set are left alone, and a missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config.LoadDotEnv: %w", err)
	}
	return nil
}
