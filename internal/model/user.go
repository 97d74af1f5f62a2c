// Package model 定义数据库实体模型
package model

import (
	"time"

	"chat_gateway_server/pkg/util/password"
)

// User 用户资料
// 对应数据库 users 表
type User struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(64);comment:用户id"`
	Username    string    `gorm:"column:username;uniqueIndex;type:varchar(32);not null;comment:用户名"`
	DisplayName string    `gorm:"column:display_name;type:varchar(64);not null;comment:显示名称"`
	CreatedAt   time.Time `gorm:"column:created_at;comment:创建时间"`
	UpdatedAt   time.Time `gorm:"column:updated_at;comment:更新时间"`
}

func (User) TableName() string {
	return "users"
}

// AuthCredential 登录凭据，与资料分表存放
type AuthCredential struct {
	UserID string `gorm:"column:user_id;primaryKey;type:varchar(64);comment:用户id"`
	// PasswordHash 支持 argon2id PHC 串和 bcrypt 哈希
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null;comment:密码哈希"`
}

func (AuthCredential) TableName() string {
	return "auth_credentials"
}

// CheckPassword 校验明文密码
func (c *AuthCredential) CheckPassword(plaintext string) bool {
	return password.Verify(c.PasswordHash, plaintext)
}
