package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat_gateway_server/internal/config"
)

func TestNewDialector(t *testing.T) {
	conf := &config.DatabaseConfig{Host: "db", Port: 3306, User: "u", Password: "p", DatabaseName: "chat"}

	d, err := newDialector(conf)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	conf.Driver = "postgres"
	d, err = newDialector(conf)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	conf.Driver = "oracle"
	_, err = newDialector(conf)
	assert.Error(t, err)
}
