package repository

import (
	"context"

	"chat_gateway_server/internal/model"

	"gorm.io/gorm"
)

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository 创建好友关系 Repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

// FindByUser 双向查询，待处理和已接受的都返回
func (r *friendRepository) FindByUser(ctx context.Context, userID string) ([]model.Friend, error) {
	friends := make([]model.Friend, 0)
	if err := r.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("created_at DESC").
		Find(&friends).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友关系 user_id=%s", userID)
	}
	return friends, nil
}
