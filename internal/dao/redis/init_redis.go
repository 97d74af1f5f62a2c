package redis

import (
	"context"
	"fmt"
	"strconv"

	"chat_gateway_server/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init 根据配置创建 Redis 客户端并校验连通性
// 客户端由调用方持有并注入到各组件，不做全局单例
func Init(ctx context.Context, conf *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Host + ":" + strconv.Itoa(conf.Port),
		Password:     conf.Password,
		DB:           conf.Db,
		PoolSize:     conf.PoolSize,
		MinIdleConns: conf.MinIdleConns,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return client, nil
}
