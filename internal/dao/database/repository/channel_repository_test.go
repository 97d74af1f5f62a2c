package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat_gateway_server/internal/model"
)

func TestAssembleChannelViews(t *testing.T) {
	now := time.Now()
	channels := []model.Channel{
		{ID: "c2", Name: "newer", Type: "GROUP", CreatedAt: now},
		{ID: "c1", Name: "older", Type: "DM", CreatedAt: now.Add(-time.Hour)},
	}
	members := []model.ChannelMember{
		{ChannelID: "c1", UserID: "u1"},
		{ChannelID: "c1", UserID: "u2"},
		{ChannelID: "c2", UserID: "u1"},
	}
	reads := []model.MessageRead{{ChannelID: "c1", UserID: "u1", LastReadMessageID: "m1"}}
	lastMessages := []model.Message{
		{ID: "m2", ChannelID: "c1", Content: "second"},
		{ID: "m1", ChannelID: "c1", Content: "first"},
	}

	views := assembleChannelViews(channels, members, reads, lastMessages)
	require.Len(t, views, 2)

	assert.Equal(t, "c2", views[0].Channel.ID)
	assert.Equal(t, []string{"u1"}, views[0].Members)
	assert.Nil(t, views[0].Read)
	assert.Nil(t, views[0].LastMessage)

	assert.Equal(t, "c1", views[1].Channel.ID)
	assert.ElementsMatch(t, []string{"u1", "u2"}, views[1].Members)
	require.NotNil(t, views[1].Read)
	assert.Equal(t, "m1", views[1].Read.LastReadMessageID)
	require.NotNil(t, views[1].LastMessage)
	assert.Equal(t, "m2", views[1].LastMessage.ID)
}

func TestAssembleChannelViewsWithoutMembers(t *testing.T) {
	views := assembleChannelViews([]model.Channel{{ID: "c1"}}, nil, nil, nil)
	require.Len(t, views, 1)
	assert.NotNil(t, views[0].Members)
	assert.Empty(t, views[0].Members)
}
