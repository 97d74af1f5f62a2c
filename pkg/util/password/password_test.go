package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2idRoundTrip(t *testing.T) {
	hash, err := HashArgon2id("s3cret")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=65536,t=3,p=4$")

	assert.True(t, Verify(hash, "s3cret"))
	assert.False(t, Verify(hash, "wrong"))
}

func TestBcryptRoundTrip(t *testing.T) {
	hash, err := HashBcrypt("s3cret")
	require.NoError(t, err)

	assert.True(t, Verify(hash, "s3cret"))
	assert.False(t, Verify(hash, "wrong"))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	assert.False(t, Verify("", "x"))
	assert.False(t, Verify("$argon2id$v=19$broken", "x"))
	assert.False(t, Verify("$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA", "x"))
	assert.False(t, Verify("$argon2id$v=19$m=1,t=1,p=1$!!$aGFzaA", "x"))
}
