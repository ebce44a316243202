package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher()

	hash, err := h.Hash("s3cret password")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.True(t, h.Verify("s3cret password", hash))
	assert.False(t, h.Verify("wrong password", hash))
}

func TestArgon2Hasher_SaltsDiffer(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher()

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same password", first))
	assert.True(t, h.Verify("same password", second))
}

func TestArgon2Hasher_MalformedHash(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher()

	assert.False(t, h.Verify("anything", ""))
	assert.False(t, h.Verify("anything", "not-a-hash"))
	assert.False(t, h.Verify("anything", "$argon2id$v=19$m=65536,t=3,p=4$short"))
	assert.False(t, h.Verify("anything", "$argon2id$v=19$m=65536,t=3,p=4$!!!$!!!"))
}
