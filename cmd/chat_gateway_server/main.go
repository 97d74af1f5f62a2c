package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chat_gateway_server/internal/config"
	"chat_gateway_server/internal/dao/database"
	"chat_gateway_server/internal/dao/database/repository"
	myredis "chat_gateway_server/internal/dao/redis"
	"chat_gateway_server/internal/gateway"
	"chat_gateway_server/internal/handler"
	"chat_gateway_server/internal/https_server"
	"chat_gateway_server/internal/infrastructure/logger"
	"chat_gateway_server/internal/infrastructure/middleware"
	"chat_gateway_server/internal/infrastructure/mq"
	"chat_gateway_server/internal/infrastructure/worker"
	"chat_gateway_server/internal/service"
	"chat_gateway_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，留空则按默认路径查找")
	flag.Parse()

	// 1. 加载配置
	conf := config.GetConfig()
	if *configPath != "" {
		c, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("load config failed: %v", err)
		}
		config.SetConfig(c)
		conf = c
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync()
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	db, err := database.Init(&conf.DatabaseConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	repos := repository.NewRepositories(db)
	zap.L().Info("数据库初始化成功", zap.String("driver", conf.DatabaseConfig.Driver))

	// 4. 初始化 Redis
	rdb, err := myredis.Init(context.Background(), &conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	cache := myredis.NewRedisCache(rdb)
	bus := myredis.NewRedisBus(rdb)
	zap.L().Info("Redis 初始化成功")

	// 5. 雪花 ID、异步任务池、生命周期事件
	ids, err := snowflake.New(conf.SnowflakeConfig.MachineID)
	if err != nil {
		zap.L().Fatal("雪花算法初始化失败", zap.Error(err))
	}
	pool := worker.NewPool(conf.GatewayConfig.WorkerNum, conf.GatewayConfig.TaskBuffer)
	events := mq.NewEventWriter(&conf.KafkaConfig)

	// 6. 初始化 Service 层和网关
	svc := service.NewServices(conf, repos, cache, bus)
	hub := gateway.NewHub()
	deps := gateway.Deps{
		State:           svc.Initial,
		Presence:        svc.Presence,
		Cache:           cache,
		Bus:             bus,
		PushTokens:      repos.PushToken,
		Events:          events,
		Runner:          pool,
		Hub:             hub,
		NewID:           ids.GenerateIDString,
		TrackPresence:   conf.GatewayConfig.TrackPresence,
		TeardownTimeout: conf.GatewayConfig.TeardownTimeoutDuration(),
	}

	// 7. 初始化 HTTP 服务器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化翻译器失败", zap.Error(err))
	}
	handlers := handler.NewHandlers(
		handler.NewAuthHandler(svc.Auth, handler.CookieOptions{
			Domain: conf.JWTConfig.CookieDomain,
			MaxAge: conf.JWTConfig.CookieMaxAge,
			Secure: conf.TLSConfig.Redirect,
		}),
		handler.NewWsHandler(deps, handler.WsOptions{
			ReadBufferSize:  conf.GatewayConfig.ReadBufferSize,
			WriteBufferSize: conf.GatewayConfig.WriteBufferSize,
			AllowOrigins:    conf.CorsConfig.AllowOrigins,
		}),
	)
	engine := https_server.Init(conf, handlers, middleware.JWTAuth(svc.Auth))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("关闭服务器...")

	// 先停止接收新请求，再关闭已有连接，最后清空异步任务
	ctx, cancel := context.WithTimeout(context.Background(), 2*conf.GatewayConfig.TeardownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("http shutdown failed", zap.Error(err))
	}
	hub.CloseAll()
	if err := hub.Wait(ctx); err != nil {
		zap.L().Warn("gateway connections did not drain", zap.Int("remaining", hub.Count()), zap.Error(err))
	}
	pool.Close()
	if err := events.Close(); err != nil {
		zap.L().Error("close event writer failed", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		zap.L().Error("close redis failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zap.L().Info("服务器已关闭")
}
