// Package presence 读写用户在线状态，并通过总线通知好友
package presence

import (
	"context"
	"time"

	"chat_gateway_server/internal/codec"
	myredis "chat_gateway_server/internal/dao/redis"
	"chat_gateway_server/internal/dto/respond"
	"chat_gateway_server/pkg/constants"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 32

// Config 在线状态服务依赖
type Config struct {
	Cache       myredis.CacheService
	Bus         myredis.Bus
	Concurrency int              // Fetch 并发上限
	Now         func() time.Time // 测试可替换
}

// Service 在线状态服务
type Service struct {
	cache       myredis.CacheService
	bus         myredis.Bus
	concurrency int
	now         func() time.Time
}

// NewService 创建在线状态服务
func NewService(cfg Config) *Service {
	s := &Service{
		cache:       cfg.Cache,
		bus:         cfg.Bus,
		concurrency: cfg.Concurrency,
		now:         cfg.Now,
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Fetch 查询一组用户的在线状态
// 读取失败或不存在时为 OFFLINE / null，不返回错误
func (s *Service) Fetch(ctx context.Context, ids []string) map[string]respond.PresenceInfo {
	results := make([]respond.PresenceInfo, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = s.lookup(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]respond.PresenceInfo, len(ids))
	for i, id := range ids {
		out[id] = results[i]
	}
	return out
}

func (s *Service) lookup(ctx context.Context, id string) respond.PresenceInfo {
	info := respond.PresenceInfo{Presence: constants.PRESENCE_OFFLINE}

	presence, ok, err := s.cache.HashGet(ctx, constants.PresenceKey(id), constants.PRESENCE_FIELD)
	if err != nil {
		zap.L().Debug("presence read failed", zap.String("user_id", id), zap.Error(err))
	} else if ok && presence != "" {
		info.Presence = presence
	}

	lastSeen, ok, err := s.cache.HashGet(ctx, constants.LastSeenKey(id), constants.LAST_SEEN_FIELD)
	if err != nil {
		zap.L().Debug("lastSeen read failed", zap.String("user_id", id), zap.Error(err))
	} else if ok {
		info.LastSeen = &lastSeen
	}
	return info
}

// NotifyOnline 向每个好友的用户频道发布 ONLINE 通知，跳过自己
func (s *Service) NotifyOnline(ctx context.Context, userID string, friendIDs []string) {
	s.broadcast(ctx, friendIDs, respond.PresenceUpdate{
		ID:       userID,
		Presence: constants.PRESENCE_ONLINE,
	})
}

// MarkOnline 记录一条连接上线，connID 加入用户的在线连接集合
func (s *Service) MarkOnline(ctx context.Context, userID, connID string) error {
	if err := s.cache.AddToSet(ctx, constants.UserSessionsKey(userID), connID); err != nil {
		return err
	}
	return s.cache.HashSet(ctx, constants.PresenceKey(userID), constants.PRESENCE_FIELD, constants.PRESENCE_ONLINE)
}

// MarkOffline 记录一条连接下线
// 只有用户最后一条连接下线时才写 OFFLINE、lastSeen 并通知好友，返回值表示是否如此
func (s *Service) MarkOffline(ctx context.Context, userID, connID string, friendIDs []string) (bool, error) {
	left, err := s.cache.RemoveFromSet(ctx, constants.UserSessionsKey(userID), connID)
	if err != nil {
		return false, err
	}
	if left > 0 {
		return false, nil
	}

	lastSeen := s.now().UTC().Format(time.RFC3339)
	if err := s.cache.HashSet(ctx, constants.PresenceKey(userID), constants.PRESENCE_FIELD, constants.PRESENCE_OFFLINE); err != nil {
		return false, err
	}
	if err := s.cache.HashSet(ctx, constants.LastSeenKey(userID), constants.LAST_SEEN_FIELD, lastSeen); err != nil {
		return false, err
	}
	s.broadcast(ctx, friendIDs, respond.PresenceUpdate{
		ID:       userID,
		Presence: constants.PRESENCE_OFFLINE,
		LastSeen: &lastSeen,
	})
	return true, nil
}

func (s *Service) broadcast(ctx context.Context, friendIDs []string, update respond.PresenceUpdate) {
	frame, err := codec.EncodeFrame(codec.TypePresenceUpdate, update)
	if err != nil {
		zap.L().Error("encode presence update failed", zap.String("user_id", update.ID), zap.Error(err))
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, fid := range friendIDs {
		if fid == update.ID {
			continue
		}
		channel := constants.UserChannel(fid)
		g.Go(func() error {
			if err := s.bus.Publish(ctx, channel, frame); err != nil {
				zap.L().Warn("presence publish failed",
					zap.String("user_id", update.ID),
					zap.String("channel", channel),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
