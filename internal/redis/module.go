package redis

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("redis",
	fx.Provide(NewClient),
)

type Params struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg config.Config
	Log *zap.Logger
}

// NewClient returns the shared Redis client, or nil when Redis is disabled.
// Consumers fall back to in-process implementations on nil.
func NewClient(p Params) (*redis.Client, error) {
	log := p.Log.Named("redis")
	if !p.Cfg.Redis.Enabled {
		log.Info("redis disabled, using in-process cache and cooldown")
		return nil, nil
	}
	if p.Cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis enabled but redis.addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Cfg.Redis.Addr,
		Password: p.Cfg.Redis.Password,
		DB:       p.Cfg.Redis.DB,
	})

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
			log.Info("redis connected", zap.String("addr", p.Cfg.Redis.Addr))
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
