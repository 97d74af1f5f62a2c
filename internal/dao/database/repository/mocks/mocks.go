// Package mocks testify 实现的 Repository 替身，供各 Service 测试使用
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat_gateway_server/internal/dao/database/repository"
	"chat_gateway_server/internal/model"
)

type UserRepository struct{ mock.Mock }

func (m *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) FindCredential(ctx context.Context, userID string) (*model.AuthCredential, error) {
	args := m.Called(ctx, userID)
	cred, _ := args.Get(0).(*model.AuthCredential)
	return cred, args.Error(1)
}

type FriendRepository struct{ mock.Mock }

func (m *FriendRepository) FindByUser(ctx context.Context, userID string) ([]model.Friend, error) {
	args := m.Called(ctx, userID)
	friends, _ := args.Get(0).([]model.Friend)
	return friends, args.Error(1)
}

type ChannelRepository struct{ mock.Mock }

func (m *ChannelRepository) FindUserChannels(ctx context.Context, userID string) ([]repository.ChannelView, error) {
	args := m.Called(ctx, userID)
	views, _ := args.Get(0).([]repository.ChannelView)
	return views, args.Error(1)
}

type SessionRepository struct{ mock.Mock }

func (m *SessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	session, _ := args.Get(0).(*model.Session)
	return session, args.Error(1)
}

func (m *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *SessionRepository) Touch(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type PushTokenRepository struct{ mock.Mock }

func (m *PushTokenRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.PushToken, error) {
	args := m.Called(ctx, sessionID)
	token, _ := args.Get(0).(*model.PushToken)
	return token, args.Error(1)
}

func (m *PushTokenRepository) Upsert(ctx context.Context, token *model.PushToken) error {
	return m.Called(ctx, token).Error(0)
}

var (
	_ repository.UserRepository      = (*UserRepository)(nil)
	_ repository.FriendRepository    = (*FriendRepository)(nil)
	_ repository.ChannelRepository   = (*ChannelRepository)(nil)
	_ repository.SessionRepository   = (*SessionRepository)(nil)
	_ repository.PushTokenRepository = (*PushTokenRepository)(nil)
)
