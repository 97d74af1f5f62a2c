package model

import (
	"database/sql"
	"time"
)

// Session 登录会话
// 对应数据库 sessions 表，每次登录生成一条，token 中携带其 id
type Session struct {
	ID           string       `gorm:"column:id;primaryKey;type:varchar(64);comment:会话id"`
	UserID       string       `gorm:"column:user_id;index;type:varchar(64);not null;comment:用户id"`
	UserAgent    string       `gorm:"column:user_agent;type:varchar(512);comment:客户端UA"`
	IPAddress    string       `gorm:"column:ip_address;type:varchar(64);comment:登录IP"`
	LastActiveAt time.Time    `gorm:"column:last_active_at;comment:最近活跃时间"`
	CreatedAt    time.Time    `gorm:"column:created_at;comment:创建时间"`
	ExpiresAt    sql.NullTime `gorm:"column:expires_at;comment:过期时间"`
}

func (Session) TableName() string {
	return "sessions"
}
