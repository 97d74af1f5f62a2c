package repository

import (
	"context"

	"chat_gateway_server/internal/model"

	"gorm.io/gorm"
)

// ChannelView 用户视角的频道原始数据
type ChannelView struct {
	Channel     model.Channel
	Members     []string
	Read        *model.MessageRead // 当前用户的已读位置，可能为空
	LastMessage *model.Message     // 最新一条消息，可能为空
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository 创建频道 Repository
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

// FindUserChannels 依次查询成员关系、频道、成员、已读位置和每个频道最新一条消息
// 不依赖 json_agg 等方言函数，mysql 和 postgres 通用
func (r *channelRepository) FindUserChannels(ctx context.Context, userID string) ([]ChannelView, error) {
	db := r.db.WithContext(ctx)

	var channelIDs []string
	if err := db.Model(&model.ChannelMember{}).
		Where("user_id = ?", userID).
		Pluck("channel_id", &channelIDs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询频道成员关系 user_id=%s", userID)
	}
	if len(channelIDs) == 0 {
		return []ChannelView{}, nil
	}

	var channels []model.Channel
	if err := db.Where("id IN ?", channelIDs).
		Order("created_at DESC").
		Find(&channels).Error; err != nil {
		return nil, wrapDBError(err, "查询频道")
	}

	var members []model.ChannelMember
	if err := db.Where("channel_id IN ?", channelIDs).Find(&members).Error; err != nil {
		return nil, wrapDBError(err, "查询频道成员")
	}

	var reads []model.MessageRead
	if err := db.Where("channel_id IN ? AND user_id = ?", channelIDs, userID).Find(&reads).Error; err != nil {
		return nil, wrapDBError(err, "查询已读位置")
	}

	latest := r.db.Model(&model.Message{}).
		Select("channel_id, MAX(created_at) AS created_at").
		Where("channel_id IN ?", channelIDs).
		Group("channel_id")
	var lastMessages []model.Message
	if err := db.Table("messages AS m").
		Select("m.*").
		Joins("JOIN (?) AS latest ON latest.channel_id = m.channel_id AND latest.created_at = m.created_at", latest).
		Order("m.id DESC").
		Find(&lastMessages).Error; err != nil {
		return nil, wrapDBError(err, "查询频道最新消息")
	}

	return assembleChannelViews(channels, members, reads, lastMessages), nil
}

// assembleChannelViews 按 channels 的顺序组装
// 同一频道有多条同一时刻的最新消息时取第一条
func assembleChannelViews(channels []model.Channel, members []model.ChannelMember, reads []model.MessageRead, lastMessages []model.Message) []ChannelView {
	membersByChannel := make(map[string][]string, len(channels))
	for _, m := range members {
		membersByChannel[m.ChannelID] = append(membersByChannel[m.ChannelID], m.UserID)
	}
	readByChannel := make(map[string]*model.MessageRead, len(reads))
	for i := range reads {
		readByChannel[reads[i].ChannelID] = &reads[i]
	}
	lastByChannel := make(map[string]*model.Message, len(lastMessages))
	for i := range lastMessages {
		if _, ok := lastByChannel[lastMessages[i].ChannelID]; !ok {
			lastByChannel[lastMessages[i].ChannelID] = &lastMessages[i]
		}
	}

	views := make([]ChannelView, 0, len(channels))
	for _, c := range channels {
		ids := membersByChannel[c.ID]
		if ids == nil {
			ids = []string{}
		}
		views = append(views, ChannelView{
			Channel:     c,
			Members:     ids,
			Read:        readByChannel[c.ID],
			LastMessage: lastByChannel[c.ID],
		})
	}
	return views
}
