package invite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rentwise/pkg/domain-errors"
)

func TestNewToken(t *testing.T) {
	token, hash, err := NewToken()
	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.NotEqual(t, token, hash)
	assert.NoError(t, Verify(token, hash))

	other, _, err := NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "tokens must be unique")
}

func TestVerify(t *testing.T) {
	hash, err := Hash("correct-token")
	require.NoError(t, err)

	t.Run("wrong token is a validation error", func(t *testing.T) {
		err := Verify("wrong-token", hash)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("empty token is a validation error", func(t *testing.T) {
		err := Verify("", hash)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("empty hash is a validation error", func(t *testing.T) {
		err := Verify("correct-token", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestHash(t *testing.T) {
	t.Run("rejects empty token", func(t *testing.T) {
		_, err := Hash("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects token longer than bcrypt allows", func(t *testing.T) {
		_, err := Hash(strings.Repeat("a", 73))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
