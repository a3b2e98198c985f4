package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/config"
)

// KeyPrefix namespaces every key written by this service.
const KeyPrefix = "horarios"

// NewRedis returns a Redis client that has answered a ping within the timeout.
func NewRedis(ctx context.Context, cfg config.RedisConfig, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return client, nil
}

// Key joins parts under the service prefix, e.g. horarios:result:<digest>.
func Key(parts ...string) string {
	return KeyPrefix + ":" + strings.Join(parts, ":")
}
