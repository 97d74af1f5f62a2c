// Package service 组装业务层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"time"

	"chat_gateway_server/internal/config"
	"chat_gateway_server/internal/dao/database/repository"
	myredis "chat_gateway_server/internal/dao/redis"
	"chat_gateway_server/internal/service/auth"
	"chat_gateway_server/internal/service/initial"
	"chat_gateway_server/internal/service/presence"
	"chat_gateway_server/pkg/util/jwt"
)

// Services 聚合所有 Service 实例
type Services struct {
	Auth     *auth.Service     // 登录与认证
	Initial  *initial.Service  // 初始状态聚合
	Presence *presence.Service // 在线状态
}

// NewServices 创建并注入所有 Service 实例
// repos、cache、bus 在进程内共享，由启动流程创建
func NewServices(conf *config.Config, repos *repository.Repositories, cache myredis.CacheService, bus myredis.Bus) *Services {
	tokens := jwt.NewManager(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	return &Services{
		Auth: auth.NewService(auth.Config{
			Users:      repos.User,
			Sessions:   repos.Session,
			PushTokens: repos.PushToken,
			Tokens:     tokens,
			SessionTTL: time.Duration(conf.JWTConfig.CookieMaxAge) * time.Second,
		}),
		Initial: initial.NewService(initial.Config{
			Users:    repos.User,
			Friends:  repos.Friend,
			Channels: repos.Channel,
			Cache:    cache,
			TTL:      conf.GatewayConfig.CacheTTLDuration(),
		}),
		Presence: presence.NewService(presence.Config{
			Cache:       cache,
			Bus:         bus,
			Concurrency: conf.GatewayConfig.PresenceConcurrency,
		}),
	}
}
