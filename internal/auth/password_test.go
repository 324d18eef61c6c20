package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hashed, err := HashPassword("pw1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hashed)

	assert.NoError(t, ComparePassword(hashed, "pw1"))
	assert.ErrorIs(t, ComparePassword(hashed, "wrong"), ErrPasswordMismatch)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_OutOfRangeCostUsesDefault(t *testing.T) {
	hashed, err := HashPassword("pw", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestComparePassword_LegacyDigest(t *testing.T) {
	sum := sha256.Sum256([]byte("senha123"))
	legacy := hex.EncodeToString(sum[:])

	assert.True(t, IsLegacyDigest(legacy))
	assert.NoError(t, ComparePassword(legacy, "senha123"))
	assert.ErrorIs(t, ComparePassword(legacy, "senha124"), ErrPasswordMismatch)
}

func TestIsLegacyDigest(t *testing.T) {
	assert.False(t, IsLegacyDigest("$2a$10$abcdefghijklmnopqrstuv"))
	assert.False(t, IsLegacyDigest(""))
	assert.False(t, IsLegacyDigest("zz"+hex.EncodeToString(make([]byte, 31))))
}
