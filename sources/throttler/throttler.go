package throttler

import (
	"context"
	"fmt"
	"time"

	"autofilter/sources/configuration"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"

	"github.com/redis/go-redis/v9"
)

const defaultLimit = 3 * time.Second

// Throttler enforces a per-user cooldown between commands. One Redis key
// per user with the cooldown as TTL; Redis being down means no
// throttling, not a dead bot.
type Throttler struct {
	client *redis.Client
	config *configuration.Config
	log    *tracing.Logger
}

func NewThrottler(client *redis.Client, config *configuration.Config, log *tracing.Logger) *Throttler {
	return &Throttler{client: client, config: config, log: log}
}

func (x *Throttler) limit() time.Duration {
	if x.config.Throttler.Limit > 0 {
		return x.config.Throttler.Limit
	}
	return defaultLimit
}

func (x *Throttler) IsAllowed(userId int64) bool {
	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	key := fmt.Sprintf("throttle:%d", userId)

	success, err := x.client.SetNX(ctx, key, time.Now().Unix(), x.limit()).Result()
	if err != nil {
		x.log.E("Error setting throttle key", tracing.InnerError, err)
		return true
	}

	return success
}
