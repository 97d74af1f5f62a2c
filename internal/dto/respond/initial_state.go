package respond

import (
	"time"

	"chat_gateway_server/internal/model"
)

// Profile 用户资料
type Profile struct {
	ID          string `json:"id" validate:"required"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
}

// LastMessage 频道最新消息摘要，Content 最多 64 个字符
type LastMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ChannelID string    `json:"channel_id"`
	ReplyTo   *string   `json:"reply_to"`
	AuthorID  string    `json:"author_id"`
}

// ChannelState 用户视角的频道
type ChannelState struct {
	ID                string       `json:"id" validate:"required"`
	Name              string       `json:"name"`
	Type              string       `json:"type"`
	CreatedAt         time.Time    `json:"created_at"`
	ReadAt            *time.Time   `json:"read_at"`
	LastReadMessageID *string      `json:"last_read_message_id"`
	Members           []string     `json:"members"`
	LastMessage       *LastMessage `json:"last_message"`
	MessagesExist     bool         `json:"messages_exist"`
}

// FriendRecord 好友关系原始记录（缓存用）
type FriendRecord struct {
	ID         string     `json:"id" validate:"required"`
	UserA      string     `json:"user_a" validate:"required"`
	UserB      string     `json:"user_b" validate:"required"`
	AcceptedAt *time.Time `json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Relationship 用户视角的好友关系
// UserID 是对方 id；Incoming 表示对方发起
type Relationship struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Incoming   bool       `json:"incoming"`
	AcceptedAt *time.Time `json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PresenceInfo 在线状态
type PresenceInfo struct {
	Presence string  `json:"presence"`
	LastSeen *string `json:"lastSeen"`
}

// InitialState INIT 帧的 data
// Presence、Session、PushToken 由网关在聚合结果上补充
type InitialState struct {
	Me            Profile                 `json:"me"`
	Channels      map[string]ChannelState `json:"channels"`
	Relationships map[string]Relationship `json:"relationships"`
	Users         map[string]Profile      `json:"users"`
	Presence      map[string]PresenceInfo `json:"presence"`
	Session       string                  `json:"session"`
	PushToken     *model.PushToken        `json:"push_token"`
}

// PresenceUpdate PRESENCE_UPDATE 帧的 data
type PresenceUpdate struct {
	ID       string  `json:"id"`
	Presence string  `json:"presence"`
	LastSeen *string `json:"lastSeen"`
}
