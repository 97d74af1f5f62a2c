package model

import (
	"database/sql"
	"time"
)

// Friend 好友关系
// UserA 为发起方，UserB 为接收方；AcceptedAt 为空表示待处理
type Friend struct {
	ID         string       `gorm:"column:id;primaryKey;type:varchar(64)"`
	UserA      string       `gorm:"column:user_a;index;type:varchar(64);not null;comment:发起方"`
	UserB      string       `gorm:"column:user_b;index;type:varchar(64);not null;comment:接收方"`
	AcceptedAt sql.NullTime `gorm:"column:accepted_at;comment:接受时间"`
	CreatedAt  time.Time    `gorm:"column:created_at"`
}

func (Friend) TableName() string {
	return "friends"
}

// Counterpart 关系中另一方的 id
func (f *Friend) Counterpart(viewerID string) string {
	if f.UserA == viewerID {
		return f.UserB
	}
	return f.UserA
}

// Incoming 对 viewer 而言是否为收到的请求
func (f *Friend) Incoming(viewerID string) bool {
	return f.UserA != viewerID
}
