// Package redis 定义缓存、在线状态和发布订阅的存储接口
// Service 层依赖这些接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"
)

// CacheService 键值存储接口
type CacheService interface {
	// ==================== String 操作 ====================

	// Set 设置键值对并指定过期时间
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get 获取键对应的值（键不存在返回空字符串、false 和 nil）
	Get(ctx context.Context, key string) (string, bool, error)

	// ==================== Key 操作 ====================

	// Delete 删除键
	Delete(ctx context.Context, keys ...string) error

	// ==================== Hash 操作 ====================

	// HashGet 读取哈希字段（字段不存在返回 false）
	HashGet(ctx context.Context, key, field string) (string, bool, error)
	// HashSet 写入哈希字段
	HashSet(ctx context.Context, key, field, value string) error

	// ==================== Set 集合操作 ====================

	// AddToSet 向集合添加成员
	AddToSet(ctx context.Context, key string, members ...string) error
	// GetSetMembers 获取集合中的所有成员
	GetSetMembers(ctx context.Context, key string) ([]string, error)
	// RemoveFromSet 从集合中移除成员，返回集合剩余成员数
	RemoveFromSet(ctx context.Context, key string, members ...string) (int64, error)
}

// Bus 发布订阅接口
type Bus interface {
	// Publish 向频道发布原始字节，不保证送达
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe 订阅一组频道，返回后订阅已生效
	Subscribe(ctx context.Context, channels ...string) (Subscription, error)
}

// Subscription 单个连接持有的订阅
type Subscription interface {
	// Messages 收到的消息负载，Close 后关闭
	Messages() <-chan []byte
	// Unsubscribe 取消订阅指定频道
	Unsubscribe(ctx context.Context, channels ...string) error
	// Close 释放订阅连接
	Close() error
}
