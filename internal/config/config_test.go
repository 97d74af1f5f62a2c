package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[mainConfig]
appName = "gw"
port = 9000

[redisConfig]
host = "redis"
port = 6379
`)

	conf, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gw", conf.MainConfig.AppName)
	assert.Equal(t, 9000, conf.MainConfig.Port)
	assert.Equal(t, "dev", conf.MainConfig.Mode)
	assert.Equal(t, "mysql", conf.DatabaseConfig.Driver)
	assert.Equal(t, "none", conf.KafkaConfig.EventMode)
	assert.Equal(t, 6*time.Hour, conf.GatewayConfig.CacheTTLDuration())
	assert.Equal(t, 32, conf.GatewayConfig.PresenceConcurrency)
	assert.Equal(t, 5*time.Second, conf.GatewayConfig.TeardownTimeoutDuration())
	assert.True(t, conf.GatewayConfig.TrackPresence)
	assert.Equal(t, []string{"*"}, conf.CorsConfig.AllowOrigins)
}

func TestLoadFileKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
[databaseConfig]
driver = "postgres"

[gatewayConfig]
cacheTTL = 60
trackPresence = false

[corsConfig]
allowOrigins = ["https://app.example.com"]
`)

	conf, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", conf.DatabaseConfig.Driver)
	assert.Equal(t, time.Minute, conf.GatewayConfig.CacheTTLDuration())
	assert.False(t, conf.GatewayConfig.TrackPresence)
	assert.Equal(t, []string{"https://app.example.com"}, conf.CorsConfig.AllowOrigins)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
