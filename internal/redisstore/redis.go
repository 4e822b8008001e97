package redisstore

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// New builds the client shared by the lock provider and the readiness probe.
// Unlike the database pool there is no degraded mode: without Redis no
// account can be mutated, so a failed ping is fatal.
func New(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redisstore.New: ping %s: %w", opts.Addr, err)
	}

	return client, nil
}
