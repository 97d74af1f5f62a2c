package repository

import (
	"context"

	"chat_gateway_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByID 按 id 查找用户
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 id=%s", id)
	}
	return &user, nil
}

// FindByIDs 按 id 列表查找用户
func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	users := make([]model.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Select("id", "display_name", "username").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// FindByUsername 按用户名查找
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 username=%s", username)
	}
	return &user, nil
}

// FindCredential 查询登录凭据
func (r *userRepository) FindCredential(ctx context.Context, userID string) (*model.AuthCredential, error) {
	var cred model.AuthCredential
	if err := r.db.WithContext(ctx).First(&cred, "user_id = ?", userID).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询凭据 user_id=%s", userID)
	}
	return &cred, nil
}
