package model

import "time"

// Channel 频道（私聊或群聊）
type Channel struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name      string    `gorm:"column:name;type:varchar(100);comment:频道名"`
	Type      string    `gorm:"column:type;type:varchar(16);not null;comment:频道类型"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (Channel) TableName() string {
	return "channels"
}

// ChannelMember 频道成员
type ChannelMember struct {
	ChannelID string `gorm:"column:channel_id;primaryKey;type:varchar(64)"`
	UserID    string `gorm:"column:user_id;primaryKey;type:varchar(64);index"`
}

func (ChannelMember) TableName() string {
	return "channel_members"
}
