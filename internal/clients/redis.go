package clients

import (
	goredis "github.com/redis/go-redis/v9"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

// Redis creates a go-redis client. No connection is made until first use.
func Redis(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
