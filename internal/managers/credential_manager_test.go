package managers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"account-core/internal/goerrors"
)

func TestHashAndVerify(t *testing.T) {
	cm := NewCredentialManager(bcrypt.MinCost, 2)
	ctx := context.Background()

	digest, err := cm.Hash(ctx, "secret123")
	require.NoError(t, err)

	assert.NotContains(t, digest, "secret123")
	assert.True(t, cm.Verify(ctx, "secret123", digest))
	assert.False(t, cm.Verify(ctx, "secret124", digest))
	assert.False(t, cm.Verify(ctx, "secret123", "not-a-digest"))
	assert.False(t, cm.Verify(ctx, "", digest))
}

func TestHashIsSalted(t *testing.T) {
	cm := NewCredentialManager(bcrypt.MinCost, 1)
	ctx := context.Background()

	first, err := cm.Hash(ctx, "secret123")
	require.NoError(t, err)
	second, err := cm.Hash(ctx, "secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashUsesDefaultCost(t *testing.T) {
	cm := NewCredentialManager(0, 1)

	digest, err := cm.Hash(context.Background(), "secret123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	cm := NewCredentialManager(bcrypt.MinCost, 1)

	_, err := cm.Hash(context.Background(), "")
	assert.ErrorIs(t, err, goerrors.ErrInvalidPassword)
}

func TestHashRejectsPasswordsOverByteLimit(t *testing.T) {
	cm := NewCredentialManager(bcrypt.MinCost, 1)
	ctx := context.Background()

	// 40 characters, 80 bytes.
	_, err := cm.Hash(ctx, strings.Repeat("ä", 40))
	assert.ErrorIs(t, err, goerrors.ErrInvalidPassword)

	digest, err := cm.Hash(ctx, strings.Repeat("ä", 36))
	require.NoError(t, err)
	assert.True(t, cm.Verify(ctx, strings.Repeat("ä", 36), digest))
}

func TestHashHonoursCancelledContext(t *testing.T) {
	cm := NewCredentialManager(bcrypt.MinCost, 1).(*CredentialManager)

	// Occupy the only worker so the next acquisition has to wait.
	require.NoError(t, cm.slots.Acquire(context.Background(), 1))
	defer cm.slots.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cm.Hash(ctx, "secret123")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, cm.Verify(ctx, "secret123", "$2a$04$abc"))
}

func TestGenerateKey(t *testing.T) {
	cm := NewCredentialManager(bcrypt.MinCost, 1)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		key, err := cm.GenerateKey()
		require.NoError(t, err)
		assert.Len(t, key, KeyLength)
		assert.True(t, ValidKey(key), key)
		seen[key] = struct{}{}
	}
	assert.Len(t, seen, 50)

	password, err := cm.GenerateTemporaryPassword()
	require.NoError(t, err)
	assert.Len(t, password, TemporaryPasswordLength)
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("abcdefghijABCDEFGH09"))
	assert.False(t, ValidKey("abcdefghijABCDEFGH0"))
	assert.False(t, ValidKey("abcdefghijABCDEFGH0-"))
	assert.False(t, ValidKey("abcdefghijABCDEFGH0ä"))
	assert.False(t, ValidKey(""))
}
