package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorUnique(t *testing.T) {
	g, err := New(7)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.GenerateIDString()
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Greater(t, g.GenerateID(), int64(0))
}

func TestGeneratorFallsBackOnInvalidMachineID(t *testing.T) {
	g, err := New(5000)
	require.NoError(t, err)
	assert.NotEmpty(t, g.GenerateIDString())
}
