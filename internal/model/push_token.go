package model

import "time"

// PushToken 推送 token，每个会话最多一条
type PushToken struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64);comment:id" json:"id"`
	SessionID string    `gorm:"column:session_id;uniqueIndex;type:varchar(64);not null;comment:会话id" json:"session_id"`
	Token     string    `gorm:"column:token;type:varchar(4096);not null;comment:推送token" json:"token"`
	UserID    string    `gorm:"column:user_id;index;type:varchar(64);not null;comment:用户id" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (PushToken) TableName() string {
	return "push_tokens"
}
