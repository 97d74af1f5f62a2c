package constants

import "time"

const (
	CACHE_TTL = 21600 * time.Second // 初始状态缓存默认有效期

	CACHE_ME_USER_PREFIX    = "CACHE:ME_USER:"    // 用户资料
	CACHE_U_FRNDS_PREFIX    = "CACHE:U_FRNDS:"    // 好友关系
	CACHE_UF_PREFIX         = "CACHE:UF:"         // 相关用户目录
	CACHE_U_CHANNELS_PREFIX = "CACHE:U_CHANNELS:" // 频道列表

	PRESENCE_KEY_PREFIX  = "user:"          // HASH，字段 presence
	LAST_SEEN_KEY_PREFIX = "user-lastSeen:" // HASH，字段 lastSeen
	PRESENCE_FIELD       = "presence"
	LAST_SEEN_FIELD      = "lastSeen"

	PRESENCE_ONLINE  = "ONLINE"
	PRESENCE_OFFLINE = "OFFLINE"

	USER_CHANNEL_PREFIX   = "U." // 发往某个用户的消息
	FRIEND_CHANNEL_PREFIX = "F." // 某个用户对好友的广播

	LAST_MESSAGE_PREVIEW_LEN = 64 // 频道最新消息预览长度（字符）
)

// MeUserKey 用户资料缓存 key
func MeUserKey(userID string) string { return CACHE_ME_USER_PREFIX + userID }

// FriendsKey 好友关系缓存 key
func FriendsKey(userID string) string { return CACHE_U_FRNDS_PREFIX + userID }

// UsersKey 用户目录缓存 key
func UsersKey(userID string) string { return CACHE_UF_PREFIX + userID }

// ChannelsKey 频道列表缓存 key
func ChannelsKey(userID string) string { return CACHE_U_CHANNELS_PREFIX + userID }

// PresenceKey 在线状态 key
func PresenceKey(userID string) string { return PRESENCE_KEY_PREFIX + userID }

// LastSeenKey 最后在线时间 key
func LastSeenKey(userID string) string { return LAST_SEEN_KEY_PREFIX + userID }

// UserSessionsKey 用户当前在线的连接集合
func UserSessionsKey(userID string) string { return PRESENCE_KEY_PREFIX + userID + ":sessions" }

// SubscriptionsKey 会话订阅记录
func SubscriptionsKey(sessionID string) string {
	return "user:session:" + sessionID + ":subscriptions"
}

// UserChannel 用户频道名
func UserChannel(userID string) string { return USER_CHANNEL_PREFIX + userID }

// FriendChannel 好友广播频道名
func FriendChannel(userID string) string { return FRIEND_CHANNEL_PREFIX + userID }
