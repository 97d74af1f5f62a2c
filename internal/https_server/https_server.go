// Package https_server 创建 Gin 引擎并配置中间件和路由
package https_server

import (
	"chat_gateway_server/internal/config"
	"chat_gateway_server/internal/handler"
	"chat_gateway_server/internal/infrastructure/logger"
	"chat_gateway_server/internal/infrastructure/middleware"
	"chat_gateway_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎
// 中间件顺序：日志、panic 恢复、CORS、可选的 TLS 重定向，然后注册业务路由
func Init(conf *config.Config, handlers *handler.Handlers, auth gin.HandlerFunc) *gin.Engine {
	if conf.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = conf.CorsConfig.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Content-Encoding", "Authorization"}
	if !containsWildcard(conf.CorsConfig.AllowOrigins) {
		corsConfig.AllowCredentials = true
	}
	engine.Use(cors.New(corsConfig))

	if conf.TLSConfig.Redirect {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port, conf.MainConfig.Mode != "release"))
	}

	router.NewRouter(handlers, auth).RegisterRoutes(engine)
	return engine
}

// cors 不允许 "*" 与 AllowCredentials 同时使用
func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
