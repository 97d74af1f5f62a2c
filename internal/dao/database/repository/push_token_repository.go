package repository

import (
	"context"

	"chat_gateway_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type pushTokenRepository struct {
	db *gorm.DB
}

// NewPushTokenRepository 创建推送 token Repository
func NewPushTokenRepository(db *gorm.DB) PushTokenRepository {
	return &pushTokenRepository{db: db}
}

// FindBySessionID 按会话查询推送 token
func (r *pushTokenRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.PushToken, error) {
	var token model.PushToken
	if err := r.db.WithContext(ctx).First(&token, "session_id = ?", sessionID).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询推送token session_id=%s", sessionID)
	}
	return &token, nil
}

// Upsert session_id 冲突时只覆盖 token
// mysql 生成 ON DUPLICATE KEY UPDATE，postgres 生成 ON CONFLICT (session_id) DO UPDATE
func (r *pushTokenRepository) Upsert(ctx context.Context, token *model.PushToken) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(token).Error
	if err != nil {
		return wrapDBErrorf(err, "写入推送token session_id=%s", token.SessionID)
	}
	return nil
}
