// Package auth 处理登录和 token 认证
// 登录时创建会话记录并签发携带会话 id 的 token，认证时还原出调用方
package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat_gateway_server/internal/dao/database/repository"
	"chat_gateway_server/internal/dto/request"
	"chat_gateway_server/internal/model"
	"chat_gateway_server/pkg/errorx"
	"chat_gateway_server/pkg/util/jwt"
)

// Config 认证服务依赖
type Config struct {
	Users      repository.UserRepository
	Sessions   repository.SessionRepository
	PushTokens repository.PushTokenRepository
	Tokens     *jwt.Manager
	SessionTTL time.Duration // 会话记录有效期，0 表示不过期
	Now        func() time.Time
}

// Service 认证服务
type Service struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	pushTokens repository.PushTokenRepository
	tokens     *jwt.Manager
	sessionTTL time.Duration
	now        func() time.Time
}

// NewService 创建认证服务
func NewService(cfg Config) *Service {
	s := &Service{
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		pushTokens: cfg.PushTokens,
		tokens:     cfg.Tokens,
		sessionTTL: cfg.SessionTTL,
		now:        cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Login 校验用户名密码，创建会话并返回 token
// 用户不存在和密码错误都返回 ErrInvalidCredentials
func (s *Service) Login(ctx context.Context, req request.LoginRequest, meta request.LoginMeta) (string, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return "", errorx.ErrInvalidCredentials
		}
		return "", err
	}
	cred, err := s.users.FindCredential(ctx, user.ID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return "", errorx.ErrInvalidCredentials
		}
		return "", err
	}
	if !cred.CheckPassword(req.Password) {
		return "", errorx.ErrInvalidCredentials
	}

	now := s.now()
	session := &model.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		UserAgent:    meta.UserAgent,
		IPAddress:    meta.IPAddress,
		LastActiveAt: now,
		CreatedAt:    now,
	}
	if s.sessionTTL > 0 {
		session.ExpiresAt = sql.NullTime{Time: now.Add(s.sessionTTL), Valid: true}
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	token, err := s.tokens.Generate(user.ID, session.ID, user.Username)
	if err != nil {
		return "", errorx.Wrap(err, errorx.CodeServerBusy, "签发 token 失败")
	}
	zap.L().Info("user login", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return token, nil
}

// Authenticate 由 token 还原调用方
// 用户必须存在；会话和推送 token 查不到时为空
func (s *Service) Authenticate(ctx context.Context, token string) (*request.AuthUser, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, errorx.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrUnauthorized
		}
		return nil, err
	}
	principal := &request.AuthUser{User: *user}
	if claims.SessionID == "" {
		return principal, nil
	}

	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	switch {
	case err != nil && errorx.IsNotFound(err):
		return principal, nil
	case err != nil:
		return nil, err
	case session.UserID != user.ID:
		return principal, nil
	case session.ExpiresAt.Valid && !s.now().Before(session.ExpiresAt.Time):
		return principal, nil
	}
	principal.Session = session

	if err := s.sessions.Touch(ctx, session.ID); err != nil {
		zap.L().Warn("touch session failed", zap.String("session_id", session.ID), zap.Error(err))
	}

	pushToken, err := s.pushTokens.FindBySessionID(ctx, session.ID)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Warn("load push token failed", zap.String("session_id", session.ID), zap.Error(err))
		}
		return principal, nil
	}
	principal.PushToken = pushToken
	return principal, nil
}
