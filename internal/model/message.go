package model

import (
	"database/sql"
	"time"
)

// Message 频道消息
type Message struct {
	ID        string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	ChannelID string         `gorm:"column:channel_id;index:idx_channel_created,priority:1;type:varchar(64);not null"`
	AuthorID  string         `gorm:"column:author_id;type:varchar(64);not null"`
	Content   string         `gorm:"column:content;type:TEXT"`
	ReplyTo   sql.NullString `gorm:"column:reply_to;type:varchar(64)"`
	CreatedAt time.Time      `gorm:"column:created_at;index:idx_channel_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageRead 用户在频道内的已读位置
type MessageRead struct {
	ChannelID         string    `gorm:"column:channel_id;primaryKey;type:varchar(64)"`
	UserID            string    `gorm:"column:user_id;primaryKey;type:varchar(64)"`
	ReadAt            time.Time `gorm:"column:read_at"`
	LastReadMessageID string    `gorm:"column:last_read_message_id;type:varchar(64)"`
}

func (MessageRead) TableName() string {
	return "message_reads"
}
