// Package gateway 管理 WebSocket 长连接
// 每条连接一个 Session：发送 INIT 快照、订阅在线状态频道、转发总线消息、处理客户端事件，断开时撤销订阅
package gateway

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chat_gateway_server/internal/codec"
	myredis "chat_gateway_server/internal/dao/redis"
	"chat_gateway_server/internal/dto/request"
	"chat_gateway_server/internal/dto/respond"
	"chat_gateway_server/internal/infrastructure/mq"
	"chat_gateway_server/internal/infrastructure/worker"
	"chat_gateway_server/internal/model"
	"chat_gateway_server/pkg/constants"
	"chat_gateway_server/pkg/errorx"
)

const defaultTeardownTimeout = 5 * time.Second

// ErrNoSession 调用方没有登录会话记录
var ErrNoSession = errorx.New(errorx.CodeSessionRequired, "session record required")

// State 连接状态
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

// Conn 会话使用的连接能力，*websocket.Conn 满足该接口
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// StateProvider 初始状态聚合
type StateProvider interface {
	GetInitialState(ctx context.Context, userID string) (*respond.InitialState, error)
}

// PresenceTracker 在线状态读写
type PresenceTracker interface {
	Fetch(ctx context.Context, ids []string) map[string]respond.PresenceInfo
	NotifyOnline(ctx context.Context, userID string, friendIDs []string)
	MarkOnline(ctx context.Context, userID, connID string) error
	MarkOffline(ctx context.Context, userID, connID string, friendIDs []string) (bool, error)
}

// PushTokenStore 推送 token 持久化
type PushTokenStore interface {
	Upsert(ctx context.Context, token *model.PushToken) error
}

// Deps 会话依赖，由启动流程注入并在所有会话间共享
type Deps struct {
	State      StateProvider
	Presence   PresenceTracker
	Cache      myredis.CacheService
	Bus        myredis.Bus
	PushTokens PushTokenStore
	Events     mq.EventWriter
	Runner     worker.Runner
	Hub        *Hub
	NewID      func() string // 推送 token 主键

	TrackPresence   bool
	TeardownTimeout time.Duration
	Now             func() time.Time
}

var validate = validator.New()

// Session 一条网关连接
type Session struct {
	id        string // 连接 id，登记到 Hub 时分配
	user      model.User
	sessionID string
	pushToken *model.PushToken
	deps      Deps

	state    atomic.Int32
	snapshot *respond.InitialState
	friends  []string // 目录中的用户 id，已排序
	channels []string // 订阅的频道

	conn    Conn
	writeMu sync.Mutex
	sub     myredis.Subscription

	closeOnce    sync.Once
	teardownOnce sync.Once
}

// NewSession 由认证结果创建会话，没有会话记录时返回 ErrNoSession
func NewSession(principal *request.AuthUser, deps Deps) (*Session, error) {
	if principal == nil || principal.Session == nil {
		return nil, ErrNoSession
	}
	if deps.Runner == nil {
		deps.Runner = worker.Inline{}
	}
	if deps.Events == nil {
		deps.Events = mq.NopWriter{}
	}
	if deps.Hub == nil {
		deps.Hub = NewHub()
	}
	if deps.TeardownTimeout <= 0 {
		deps.TeardownTimeout = defaultTeardownTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Session{
		user:      principal.User,
		sessionID: principal.Session.ID,
		pushToken: principal.PushToken,
		deps:      deps,
	}, nil
}

// ID 连接 id，未登记前为空
func (s *Session) ID() string { return s.id }

// State 当前状态
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// Channels 连接订阅的频道
func (s *Session) Channels() []string { return s.channels }

// Prepare 构建 INIT 快照：聚合初始状态，补充目录用户的在线状态、会话 id 和推送 token
// 在升级连接前调用，失败时调用方直接拒绝升级
func (s *Session) Prepare(ctx context.Context) (*respond.InitialState, error) {
	state, err := s.deps.State.GetInitialState(ctx, s.user.ID)
	if err != nil {
		return nil, err
	}

	friends := make([]string, 0, len(state.Users))
	for id := range state.Users {
		friends = append(friends, id)
	}
	sort.Strings(friends)

	state.Presence = s.deps.Presence.Fetch(ctx, friends)
	state.Session = s.sessionID
	state.PushToken = s.pushToken

	s.snapshot = state
	s.friends = friends
	s.channels = subscriptionChannels(s.user.ID, friends)
	return state, nil
}

// subscriptionChannels 自己的用户频道加每个目录用户的好友频道
// 目录即好友集合：好友关系对方和频道成员都算，不区分是否已接受好友
func subscriptionChannels(userID string, friends []string) []string {
	channels := make([]string, 0, len(friends)+1)
	channels = append(channels, constants.UserChannel(userID))
	for _, id := range friends {
		channels = append(channels, constants.FriendChannel(id))
	}
	return channels
}

// Serve 在已升级的连接上运行会话，直到连接断开并完成清理
func (s *Session) Serve(ctx context.Context, conn Conn) error {
	s.conn = conn
	if s.snapshot == nil {
		if _, err := s.Prepare(ctx); err != nil {
			s.abort()
			return err
		}
	}

	frame, err := codec.EncodeFrame(codec.TypeInit, s.snapshot)
	if err != nil {
		s.abort()
		return err
	}
	if err := s.write(frame); err != nil {
		zap.L().Info("send INIT failed", zap.String("user_id", s.user.ID), zap.Error(err))
		s.abort()
		return err
	}
	s.snapshot = nil

	sub, err := s.deps.Bus.Subscribe(ctx, s.channels...)
	if err != nil {
		zap.L().Error("subscribe failed", zap.String("user_id", s.user.ID), zap.Error(err))
		s.abort()
		return err
	}
	s.sub = sub

	if err := s.deps.Hub.register(s); err != nil {
		zap.L().Error("register connection failed", zap.String("user_id", s.user.ID), zap.Error(err))
		_ = sub.Close()
		s.abort()
		return err
	}
	log := zap.L().With(zap.String("conn_id", s.id), zap.String("user_id", s.user.ID))

	key := constants.SubscriptionsKey(s.sessionID)
	if err := s.deps.Cache.AddToSet(ctx, key, s.channels...); err != nil {
		log.Warn("record subscriptions failed", zap.String("key", key), zap.Error(err))
	}
	if s.deps.TrackPresence {
		if err := s.deps.Presence.MarkOnline(ctx, s.user.ID, s.id); err != nil {
			log.Warn("mark online failed", zap.Error(err))
		}
	}
	s.deps.Runner.Submit(func() {
		bg, cancel := context.WithTimeout(context.Background(), s.deps.TeardownTimeout)
		defer cancel()
		s.deps.Presence.NotifyOnline(bg, s.user.ID, s.friends)
	})
	s.emit(mq.EventSessionConnected)

	s.setState(StateActive)
	log.Info("gateway session active", zap.Int("channels", len(s.channels)))
	go s.relay(sub)
	s.receive(ctx)
	s.teardown()
	return nil
}

// abort 未进入 ACTIVE 就失败，没有需要撤销的订阅
func (s *Session) abort() {
	s.Close()
	s.setState(StateClosed)
}

// write 每次只在一次写操作期间持有锁
func (s *Session) write(frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// relay 原样转发总线消息，写失败时关闭连接以结束接收循环
func (s *Session) relay(sub myredis.Subscription) {
	for msg := range sub.Messages() {
		if err := s.write(msg); err != nil {
			zap.L().Debug("relay write failed", zap.String("conn_id", s.id), zap.Error(err))
			s.Close()
			return
		}
	}
}

func (s *Session) receive(ctx context.Context) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				zap.L().Debug("gateway read error", zap.String("conn_id", s.id), zap.Error(err))
			}
			return
		}
		s.dispatch(ctx, data)
	}
}

// dispatch 无法解析或未知类型的帧直接忽略
func (s *Session) dispatch(ctx context.Context, data []byte) {
	ev, err := codec.DecodeEvent(data)
	if err != nil {
		zap.L().Debug("drop client frame", zap.String("conn_id", s.id), zap.Error(err))
		return
	}

	switch e := ev.(type) {
	case codec.PingEvent:
		frame, err := codec.EncodeFrame(codec.TypePong, nil)
		if err != nil {
			return
		}
		if err := s.write(frame); err != nil {
			zap.L().Debug("send PONG failed", zap.String("conn_id", s.id), zap.Error(err))
		}
	case codec.PushTokenEvent:
		s.registerPushToken(ctx, e)
	case codec.UnknownEvent:
		zap.L().Debug("ignore client event", zap.String("conn_id", s.id), zap.String("type", e.Type))
	}
}

func (s *Session) registerPushToken(ctx context.Context, e codec.PushTokenEvent) {
	if err := validate.Struct(e); err != nil {
		zap.L().Debug("drop push token", zap.String("conn_id", s.id), zap.Error(err))
		return
	}
	token := &model.PushToken{
		ID:        s.deps.NewID(),
		SessionID: s.sessionID,
		Token:     e.Token,
		UserID:    s.user.ID,
	}
	if err := s.deps.PushTokens.Upsert(ctx, token); err != nil {
		zap.L().Warn("save push token failed", zap.String("conn_id", s.id), zap.Error(err))
		return
	}
	s.emit(mq.EventPushTokenRegistered)
}

func (s *Session) emit(eventType string) {
	event := mq.LifecycleEvent{
		Type:      eventType,
		UserID:    s.user.ID,
		SessionID: s.sessionID,
		ConnID:    s.id,
		At:        s.deps.Now().UTC(),
	}
	s.deps.Runner.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.deps.TeardownTimeout)
		defer cancel()
		if err := s.deps.Events.WriteEvent(ctx, event); err != nil {
			zap.L().Warn("write lifecycle event failed", zap.String("type", event.Type), zap.Error(err))
		}
	})
}

// teardown 撤销记录的订阅并清理，每个会话只执行一次
// 存储不可达时受 TeardownTimeout 限制，失败只记录日志
func (s *Session) teardown() {
	s.teardownOnce.Do(func() {
		s.setState(StateClosing)
		ctx, cancel := context.WithTimeout(context.Background(), s.deps.TeardownTimeout)
		defer cancel()
		log := zap.L().With(zap.String("conn_id", s.id), zap.String("user_id", s.user.ID))

		key := constants.SubscriptionsKey(s.sessionID)
		channels, err := s.deps.Cache.GetSetMembers(ctx, key)
		if err != nil {
			log.Warn("read subscriptions failed", zap.String("key", key), zap.Error(err))
			channels = s.channels
		}
		if err := s.sub.Unsubscribe(ctx, channels...); err != nil {
			log.Warn("unsubscribe failed", zap.Error(err))
		}
		if err := s.deps.Cache.Delete(ctx, key); err != nil {
			log.Warn("delete subscriptions failed", zap.String("key", key), zap.Error(err))
		}
		if err := s.sub.Close(); err != nil {
			log.Debug("close subscription failed", zap.Error(err))
		}

		if s.deps.TrackPresence {
			if _, err := s.deps.Presence.MarkOffline(ctx, s.user.ID, s.id, s.friends); err != nil {
				log.Warn("mark offline failed", zap.Error(err))
			}
		}
		s.emit(mq.EventSessionDisconnected)
		s.deps.Hub.unregister(s)
		s.Close()
		s.setState(StateClosed)
		log.Info("gateway session closed")
	})
}

// Close 关闭底层连接，接收循环随之退出并触发清理
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
}
