// Package initial 构建连接建立时下发的初始状态
// 包含用户资料、频道、好友关系和相关用户目录，每一部分都走 cache-aside
package initial

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	"chat_gateway_server/internal/dao/database/repository"
	myredis "chat_gateway_server/internal/dao/redis"
	"chat_gateway_server/internal/dto/respond"
	"chat_gateway_server/internal/model"
	"chat_gateway_server/pkg/constants"
	"chat_gateway_server/pkg/errorx"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 失败步骤标签，出现在日志和错误消息中
const (
	StepProfile  = "initial.profile"
	StepChannels = "initial.channels"
	StepFriends  = "initial.friends"
	StepUsers    = "initial.users"
)

// Config 聚合器依赖
type Config struct {
	Users    repository.UserRepository
	Friends  repository.FriendRepository
	Channels repository.ChannelRepository
	Cache    myredis.CacheService
	TTL      time.Duration
}

// Service 初始状态聚合器
type Service struct {
	users    repository.UserRepository
	friends  repository.FriendRepository
	channels repository.ChannelRepository
	cache    myredis.CacheService
	ttl      time.Duration
}

// NewService 创建聚合器，TTL 为 0 时使用默认值
func NewService(cfg Config) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.CACHE_TTL
	}
	return &Service{
		users:    cfg.Users,
		friends:  cfg.Friends,
		channels: cfg.Channels,
		cache:    cfg.Cache,
		ttl:      ttl,
	}
}

// GetInitialState 构建 userID 的初始状态
// 资料和频道并发获取；好友关系和用户目录依赖频道成员，随后获取。
// 任一步失败返回 CodeAggregateFailed，不返回部分结果。
func (s *Service) GetInitialState(ctx context.Context, userID string) (*respond.InitialState, error) {
	var (
		me       respond.Profile
		channels []respond.ChannelState
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profile(gctx, userID)
		if err != nil {
			return s.fail(StepProfile, userID, err)
		}
		me = p
		return nil
	})
	g.Go(func() error {
		c, err := s.userChannels(gctx, userID)
		if err != nil {
			return s.fail(StepChannels, userID, err)
		}
		channels = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records, err := s.friendships(ctx, userID)
	if err != nil {
		return nil, s.fail(StepFriends, userID, err)
	}

	users, err := s.directory(ctx, userID, directoryIDs(userID, channels, records))
	if err != nil {
		return nil, s.fail(StepUsers, userID, err)
	}

	state := &respond.InitialState{
		Me:            me,
		Channels:      make(map[string]respond.ChannelState, len(channels)),
		Relationships: make(map[string]respond.Relationship, len(records)),
		Users:         users,
	}
	for _, c := range channels {
		state.Channels[c.ID] = c
	}
	for _, r := range records {
		state.Relationships[r.ID] = toRelationship(userID, r)
	}
	return state, nil
}

func (s *Service) fail(step, userID string, err error) error {
	zap.L().Error("initial state step failed",
		zap.String("step", step),
		zap.String("user_id", userID),
		zap.Error(err),
	)
	return errorx.Wrapf(err, errorx.CodeAggregateFailed, "初始状态构建失败 step=%s", step)
}

func (s *Service) profile(ctx context.Context, userID string) (respond.Profile, error) {
	return myredis.Cached(ctx, s.cache, constants.MeUserKey(userID), s.ttl, func(ctx context.Context) (respond.Profile, error) {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return respond.Profile{}, err
		}
		return toProfile(user), nil
	})
}

func (s *Service) userChannels(ctx context.Context, userID string) ([]respond.ChannelState, error) {
	return myredis.Cached(ctx, s.cache, constants.ChannelsKey(userID), s.ttl, func(ctx context.Context) ([]respond.ChannelState, error) {
		views, err := s.channels.FindUserChannels(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := make([]respond.ChannelState, 0, len(views))
		for _, v := range views {
			out = append(out, toChannelState(v))
		}
		return out, nil
	})
}

func (s *Service) friendships(ctx context.Context, userID string) ([]respond.FriendRecord, error) {
	return myredis.Cached(ctx, s.cache, constants.FriendsKey(userID), s.ttl, func(ctx context.Context) ([]respond.FriendRecord, error) {
		friends, err := s.friends.FindByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := make([]respond.FriendRecord, 0, len(friends))
		for i := range friends {
			out = append(out, toFriendRecord(&friends[i]))
		}
		return out, nil
	})
}

// directory 缓存 key 只按 viewer 区分
func (s *Service) directory(ctx context.Context, userID string, ids []string) (map[string]respond.Profile, error) {
	return myredis.Cached(ctx, s.cache, constants.UsersKey(userID), s.ttl, func(ctx context.Context) (map[string]respond.Profile, error) {
		out := make(map[string]respond.Profile, len(ids))
		if len(ids) == 0 {
			return out, nil
		}
		users, err := s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range users {
			out[users[i].ID] = toProfile(&users[i])
		}
		return out, nil
	})
}

// directoryIDs 频道成员和好友对方的并集，去掉 viewer 自己，排序后返回
func directoryIDs(viewerID string, channels []respond.ChannelState, records []respond.FriendRecord) []string {
	set := make(map[string]struct{})
	for _, c := range channels {
		for _, m := range c.Members {
			set[m] = struct{}{}
		}
	}
	for _, r := range records {
		if r.UserA == viewerID {
			set[r.UserB] = struct{}{}
		} else {
			set[r.UserA] = struct{}{}
		}
	}
	delete(set, viewerID)

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func toProfile(u *model.User) respond.Profile {
	return respond.Profile{ID: u.ID, DisplayName: u.DisplayName, Username: u.Username}
}

func toFriendRecord(f *model.Friend) respond.FriendRecord {
	rec := respond.FriendRecord{
		ID:        f.ID,
		UserA:     f.UserA,
		UserB:     f.UserB,
		CreatedAt: f.CreatedAt,
	}
	if f.AcceptedAt.Valid {
		at := f.AcceptedAt.Time
		rec.AcceptedAt = &at
	}
	return rec
}

func toRelationship(viewerID string, r respond.FriendRecord) respond.Relationship {
	counterpart, incoming := r.UserA, true
	if r.UserA == viewerID {
		counterpart, incoming = r.UserB, false
	}
	return respond.Relationship{
		ID:         r.ID,
		UserID:     counterpart,
		Incoming:   incoming,
		AcceptedAt: r.AcceptedAt,
		CreatedAt:  r.CreatedAt,
	}
}

func toChannelState(v repository.ChannelView) respond.ChannelState {
	state := respond.ChannelState{
		ID:        v.Channel.ID,
		Name:      v.Channel.Name,
		Type:      v.Channel.Type,
		CreatedAt: v.Channel.CreatedAt,
		Members:   v.Members,
	}
	if state.Members == nil {
		state.Members = []string{}
	}
	if v.Read != nil {
		readAt := v.Read.ReadAt
		state.ReadAt = &readAt
		if v.Read.LastReadMessageID != "" {
			id := v.Read.LastReadMessageID
			state.LastReadMessageID = &id
		}
	}
	if m := v.LastMessage; m != nil {
		last := &respond.LastMessage{
			ID:        m.ID,
			Content:   truncateRunes(m.Content, constants.LAST_MESSAGE_PREVIEW_LEN),
			CreatedAt: m.CreatedAt,
			ChannelID: m.ChannelID,
			AuthorID:  m.AuthorID,
		}
		if m.ReplyTo.Valid {
			replyTo := m.ReplyTo.String
			last.ReplyTo = &replyTo
		}
		state.LastMessage = last
		state.MessagesExist = true
	}
	return state
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
