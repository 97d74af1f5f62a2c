package repository

import (
	"context"
	"time"

	"chat_gateway_server/internal/model"

	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建会话 Repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// FindByID 按 id 查询会话
func (r *sessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 id=%s", id)
	}
	return &session, nil
}

// Create 创建会话
func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return wrapDBError(err, "创建会话")
	}
	return nil
}

// Touch 刷新最近活跃时间
func (r *sessionRepository) Touch(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", id).
		Update("last_active_at", time.Now()).Error; err != nil {
		return wrapDBErrorf(err, "更新会话活跃时间 id=%s", id)
	}
	return nil
}
