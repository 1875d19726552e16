package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/railzwaylabs/pricecalc/internal/refresh/domain"
	"github.com/redis/go-redis/v9"
)

const cooldownKey = "pricecalc:refresh:cooldown"

// RedisGate shares one cooldown window across every instance. The key's TTL
// is the window, so Redis expires it without help.
type RedisGate struct {
	client *redis.Client
	clock  clock.Clock
}

func NewRedis(client *redis.Client, clk clock.Clock) *RedisGate {
	return &RedisGate{client: client, clock: clk}
}

// New picks the Redis gate when a client is configured.
func New(client *redis.Client, clk clock.Clock) domain.Gate {
	if client == nil {
		return NewMemory(clk)
	}
	return NewRedis(client, clk)
}

func (g *RedisGate) Arm(ctx context.Context, window time.Duration) (time.Duration, bool, error) {
	// the key can expire between SETNX and PTTL, so try twice
	for attempt := 0; attempt < 2; attempt++ {
		armedAt := g.clock.Now(ctx).UTC().Format(time.RFC3339Nano)
		ok, err := g.client.SetNX(ctx, cooldownKey, armedAt, window).Result()
		if err != nil {
			return 0, false, fmt.Errorf("arm refresh cooldown: %w", err)
		}
		if ok {
			return window, true, nil
		}

		remaining, err := g.Remaining(ctx)
		if err != nil {
			return 0, false, err
		}
		if remaining > 0 {
			return remaining, false, nil
		}
	}
	return 0, false, fmt.Errorf("arm refresh cooldown: key churned during arm")
}

func (g *RedisGate) Remaining(ctx context.Context) (time.Duration, error) {
	ttl, err := g.client.PTTL(ctx, cooldownKey).Result()
	if err != nil {
		return 0, fmt.Errorf("read refresh cooldown: %w", err)
	}
	// -2 missing, -1 no expiry; neither is a running window
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
