package clients

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/cfg"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/jitter"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const pingAttempts = 3

type RedisClient struct {
	Client *r.Client
}

func NewRedisClient(cfg *cfg.RedisCfg) *RedisClient {
	client := r.NewClient(&r.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	return &RedisClient{
		Client: client,
	}
}

// Ping проверяет соединение, делая до pingAttempts попыток с backoff:
// при старте через docker compose Redis может подняться позже сервиса.
func (r *RedisClient) Ping(ctx context.Context) error {
	backoff := jitter.Backoff{Base: 200 * time.Millisecond, Max: 2 * time.Second}

	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = r.Client.Ping(ctx).Err(); err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return e.Wrap(whereami.WhereAmI(), errors.Join(err, ctx.Err()))
		case <-time.After(backoff.Next()):
		}
	}

	return e.Wrap(whereami.WhereAmI(), err)
}

func (r *RedisClient) Close(context.Context) error {
	return r.Client.Close()
}
