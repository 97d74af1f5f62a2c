package redis

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"chat_gateway_server/pkg/errorx"
)

// RedisBus 基于 Redis PUBLISH/SUBSCRIBE 的 Bus 实现
type RedisBus struct {
	client redis.UniversalClient
}

// NewRedisBus 创建发布订阅实例
func NewRedisBus(client redis.UniversalClient) *RedisBus {
	return &RedisBus{client: client}
}

// Publish 发布原始字节到频道
func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeBusError, "redis publish %s", channel)
	}
	return nil
}

// Subscribe 每次调用占用一条独立的订阅连接
func (b *RedisBus) Subscribe(ctx context.Context, channels ...string) (Subscription, error) {
	if len(channels) == 0 {
		return nil, errorx.New(errorx.CodeBusError, "subscribe without channels")
	}
	pubsub := b.client.Subscribe(ctx, channels...)
	// 等待服务端确认，保证返回后不会漏掉消息
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errorx.Wrapf(err, errorx.CodeBusError, "redis subscribe %v", channels)
	}
	return newRedisSubscription(pubsub), nil
}

type redisSubscription struct {
	pubsub    *redis.PubSub
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newRedisSubscription(pubsub *redis.PubSub) *redisSubscription {
	s := &redisSubscription{
		pubsub: pubsub,
		out:    make(chan []byte),
		done:   make(chan struct{}),
	}
	go s.forward(pubsub.Channel())
	return s
}

func (s *redisSubscription) forward(in <-chan *redis.Message) {
	defer close(s.out)
	for msg := range in {
		select {
		case s.out <- []byte(msg.Payload):
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Messages() <-chan []byte {
	return s.out
}

func (s *redisSubscription) Unsubscribe(ctx context.Context, channels ...string) error {
	if len(channels) == 0 {
		return nil
	}
	if err := s.pubsub.Unsubscribe(ctx, channels...); err != nil {
		return errorx.Wrapf(err, errorx.CodeBusError, "redis unsubscribe %v", channels)
	}
	return nil
}

func (s *redisSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}

var _ Bus = (*RedisBus)(nil)
