// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 服务器监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 服务器监听端口，如 8000
	Mode    string `toml:"mode"`    // 运行模式：dev 或 release
}

// DatabaseConfig 关系型数据库连接配置
type DatabaseConfig struct {
	Driver       string `toml:"driver"`       // 驱动：mysql（默认）或 postgres
	Host         string `toml:"host"`         // 数据库地址
	Port         int    `toml:"port"`         // 端口
	User         string `toml:"user"`         // 用户名
	Password     string `toml:"password"`     // 密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
	MaxOpenConns int    `toml:"maxOpenConns"` // 最大打开连接数
	MaxIdleConns int    `toml:"maxIdleConns"` // 最大空闲连接数
	AutoMigrate  bool   `toml:"autoMigrate"`  // 启动时是否执行 AutoMigrate
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host         string `toml:"host"`         // Redis 服务器地址
	Port         int    `toml:"port"`         // Redis 端口，默认 6379
	Password     string `toml:"password"`     // Redis 密码，无密码留空
	Db           int    `toml:"db"`           // Redis 数据库编号，默认 0
	PoolSize     int    `toml:"poolSize"`     // 连接池大小
	MinIdleConns int    `toml:"minIdleConns"` // 最小空闲连接
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 会话生命周期事件流配置
type KafkaConfig struct {
	EventMode  string        `toml:"eventMode"`  // 事件模式："none" 或 "kafka"
	HostPort   string        `toml:"hostPort"`   // Kafka 服务器地址，如 "localhost:9092"
	EventTopic string        `toml:"eventTopic"` // 生命周期事件主题
	Timeout    time.Duration `toml:"timeout"`    // 写超时（秒）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Token 有效期（分钟）
	CookieDomain      string `toml:"cookieDomain"`      // 写入 cookie 时的 Domain，留空则不设置
	CookieMaxAge      int    `toml:"cookieMaxAge"`      // cookie 有效期（秒）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023，分布式部署时每台机器需唯一
}

// GatewayConfig 实时网关配置
type GatewayConfig struct {
	CacheTTL            int  `toml:"cacheTTL"`            // 初始状态缓存有效期（秒）
	PresenceConcurrency int  `toml:"presenceConcurrency"` // 在线状态并发查询上限
	TeardownTimeout     int  `toml:"teardownTimeout"`     // 连接清理超时（秒）
	ReadBufferSize      int  `toml:"readBufferSize"`      // WebSocket 读缓冲
	WriteBufferSize     int  `toml:"writeBufferSize"`     // WebSocket 写缓冲
	WorkerNum           int  `toml:"workerNum"`           // 异步任务 Worker 数量
	TaskBuffer          int  `toml:"taskBuffer"`          // 异步任务通道缓冲
	TrackPresence       bool `toml:"trackPresence"`       // 是否由网关维护在线状态
}

// CorsConfig 跨域配置
type CorsConfig struct {
	AllowOrigins []string `toml:"allowOrigins"`
}

// TLSConfig TLS 重定向配置，由 Nginx 处理 SSL 时关闭
type TLSConfig struct {
	Redirect bool `toml:"redirect"`
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`      // 主配置
	DatabaseConfig  `toml:"databaseConfig"`  // 数据库配置
	RedisConfig     `toml:"redisConfig"`     // Redis 配置
	LogConfig       `toml:"logConfig"`       // 日志配置
	KafkaConfig     `toml:"kafkaConfig"`     // Kafka 配置
	JWTConfig       `toml:"jwtConfig"`       // JWT 配置
	SnowflakeConfig `toml:"snowflakeConfig"` // 雪花算法配置
	GatewayConfig   `toml:"gatewayConfig"`   // 网关配置
	CorsConfig      `toml:"corsConfig"`      // 跨域配置
	TLSConfig       `toml:"tlsConfig"`       // TLS 配置
}

// config 全局配置单例，延迟加载
var config *Config

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	for _, path := range searchPaths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// LoadFile 从指定文件加载配置（测试和命令行 -config 使用）
func LoadFile(path string) (*Config, error) {
	conf := newDefaultConfig()
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	conf.applyDefaults()
	return conf, nil
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = newDefaultConfig()
		_ = LoadConfig() // 忽略加载错误，使用默认值
		config.applyDefaults()
	}
	return config
}

// SetConfig 替换全局配置
func SetConfig(c *Config) {
	config = c
}

// newDefaultConfig 布尔类型的默认值需要在解码前设置
func newDefaultConfig() *Config {
	return &Config{
		GatewayConfig: GatewayConfig{TrackPresence: true},
	}
}

// applyDefaults 填充未配置的字段
func (c *Config) applyDefaults() {
	if c.MainConfig.Mode == "" {
		c.MainConfig.Mode = "dev"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	if c.DatabaseConfig.Driver == "" {
		c.DatabaseConfig.Driver = "mysql"
	}
	if c.RedisConfig.PoolSize == 0 {
		c.RedisConfig.PoolSize = 50
	}
	if c.RedisConfig.MinIdleConns == 0 {
		c.RedisConfig.MinIdleConns = 15
	}
	if c.KafkaConfig.EventMode == "" {
		c.KafkaConfig.EventMode = "none"
	}
	if c.KafkaConfig.Timeout == 0 {
		c.KafkaConfig.Timeout = 1
	}
	if c.JWTConfig.AccessTokenExpiry == 0 {
		c.JWTConfig.AccessTokenExpiry = 60
	}
	if c.JWTConfig.CookieMaxAge == 0 {
		c.JWTConfig.CookieMaxAge = 2592000
	}
	g := &c.GatewayConfig
	if g.CacheTTL == 0 {
		g.CacheTTL = 21600
	}
	if g.PresenceConcurrency == 0 {
		g.PresenceConcurrency = 32
	}
	if g.TeardownTimeout == 0 {
		g.TeardownTimeout = 5
	}
	if g.ReadBufferSize == 0 {
		g.ReadBufferSize = 1024
	}
	if g.WriteBufferSize == 0 {
		g.WriteBufferSize = 1024
	}
	if g.WorkerNum == 0 {
		g.WorkerNum = 15
	}
	if g.TaskBuffer == 0 {
		g.TaskBuffer = 3000
	}
	if len(c.CorsConfig.AllowOrigins) == 0 {
		c.CorsConfig.AllowOrigins = []string{"*"}
	}
}

// CacheTTLDuration 缓存有效期
func (g GatewayConfig) CacheTTLDuration() time.Duration {
	return time.Duration(g.CacheTTL) * time.Second
}

// TeardownTimeoutDuration 连接清理超时
func (g GatewayConfig) TeardownTimeoutDuration() time.Duration {
	return time.Duration(g.TeardownTimeout) * time.Second
}
