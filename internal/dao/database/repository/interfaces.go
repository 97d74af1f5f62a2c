// Package repository 定义数据访问层接口和聚合结构
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"
	"errors"

	"chat_gateway_server/internal/model"
	"chat_gateway_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError ErrRecordNotFound -> CodeNotFound，其他 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// ==================== Repository 接口定义 ====================

// UserRepository 用户资料与凭据
type UserRepository interface {
	// FindByID 不存在返回 CodeNotFound
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByIDs 批量查询，ids 为空时不访问数据库
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindCredential(ctx context.Context, userID string) (*model.AuthCredential, error)
}

// FriendRepository 好友关系
type FriendRepository interface {
	// FindByUser 查询 user_a 或 user_b 为 userID 的所有记录
	FindByUser(ctx context.Context, userID string) ([]model.Friend, error)
}

// ChannelRepository 频道
type ChannelRepository interface {
	// FindUserChannels 用户所在的频道，按创建时间倒序
	FindUserChannels(ctx context.Context, userID string) ([]ChannelView, error)
}

// SessionRepository 登录会话
type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Create(ctx context.Context, session *model.Session) error
	Touch(ctx context.Context, id string) error
}

// PushTokenRepository 推送 token
type PushTokenRepository interface {
	FindBySessionID(ctx context.Context, sessionID string) (*model.PushToken, error)
	// Upsert 按 session_id 插入或覆盖 token
	Upsert(ctx context.Context, token *model.PushToken) error
}

// ==================== 聚合 ====================

// Repositories 聚合所有 Repository 实例
type Repositories struct {
	db        *gorm.DB
	User      UserRepository
	Friend    FriendRepository
	Channel   ChannelRepository
	Session   SessionRepository
	PushToken PushTokenRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:        db,
		User:      NewUserRepository(db),
		Friend:    NewFriendRepository(db),
		Channel:   NewChannelRepository(db),
		Session:   NewSessionRepository(db),
		PushToken: NewPushTokenRepository(db),
	}
}

// Transaction 在数据库事务中执行函数，出错自动回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
