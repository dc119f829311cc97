package configs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis returns nil when REDIS_ADDR is empty or unreachable; callers
// treat a nil client as "feature disabled".
func ConnectRedis(ctx context.Context, addr string, log *logrus.Logger) *redis.Client {
	if addr == "" {
		log.Warn("REDIS_ADDR not set, sweep lock and receipt sequence use local fallbacks")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.WithError(err).Error("redis unreachable, continuing without it")
		_ = rdb.Close()
		return nil
	}

	log.WithField("addr", addr).Info("redis connected")
	return rdb
}
