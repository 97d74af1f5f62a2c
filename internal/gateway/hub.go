package gateway

import (
	"context"
	"sync"

	"github.com/aidarkhanov/nanoid/v2"
	"github.com/segmentio/fasthash/fnv1a"
	"go.uber.org/zap"
)

const (
	hubShards     = 32
	connIDLength  = 12
	connIDCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

type hubShard struct {
	sync.RWMutex
	sessions map[string]*Session
}

// Hub 本进程所有在线连接，按连接 id 分片
type Hub struct {
	shards [hubShards]*hubShard
	live   sync.WaitGroup
}

// NewHub 创建连接注册表
func NewHub() *Hub {
	h := &Hub{}
	for i := range h.shards {
		h.shards[i] = &hubShard{sessions: make(map[string]*Session)}
	}
	return h
}

func (h *Hub) shard(id string) *hubShard {
	return h.shards[fnv1a.HashString32(id)%hubShards]
}

// register 分配不重复的连接 id 并登记
func (h *Hub) register(s *Session) error {
	id, err := nanoid.GenerateString(connIDCharset, connIDLength)
	if err != nil {
		return err
	}
	for {
		shard := h.shard(id)
		shard.Lock()
		if _, exists := shard.sessions[id]; !exists {
			shard.sessions[id] = s
			s.id = id
			h.live.Add(1)
			shard.Unlock()
			return nil
		}
		shard.Unlock()
		if id, err = nanoid.GenerateString(connIDCharset, connIDLength); err != nil {
			return err
		}
	}
}

func (h *Hub) unregister(s *Session) {
	if s.id == "" {
		return
	}
	shard := h.shard(s.id)
	shard.Lock()
	_, ok := shard.sessions[s.id]
	delete(shard.sessions, s.id)
	shard.Unlock()
	if ok {
		h.live.Done()
	}
}

// Get 按连接 id 查找
func (h *Hub) Get(id string) (*Session, bool) {
	shard := h.shard(id)
	shard.RLock()
	defer shard.RUnlock()
	s, ok := shard.sessions[id]
	return s, ok
}

// Count 当前在线连接数
func (h *Hub) Count() int {
	n := 0
	for _, shard := range h.shards {
		shard.RLock()
		n += len(shard.sessions)
		shard.RUnlock()
	}
	return n
}

// CloseAll 关闭所有连接，各连接的清理在其自身协程中进行
func (h *Hub) CloseAll() {
	var all []*Session
	for _, shard := range h.shards {
		shard.RLock()
		for _, s := range shard.sessions {
			all = append(all, s)
		}
		shard.RUnlock()
	}
	for _, s := range all {
		s.Close()
	}
	zap.L().Info("gateway closing connections", zap.Int("count", len(all)))
}

// Wait 等待所有连接完成清理，ctx 到期时返回其错误
func (h *Hub) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.live.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
