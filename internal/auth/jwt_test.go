package auth

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The package refuses to sign without JWT_SECRET, so the suite provides one.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-only-secret")
	os.Exit(m.Run())
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(12, true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.UserID)
	assert.True(t, claims.IsAdmin)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseAndValidate("not-a-token")
	assert.Error(t, err)

	_, err = ParseAndValidate("")
	assert.Error(t, err)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	token, err := GenerateToken(12, false)
	require.NoError(t, err)

	_, err = ParseAndValidate(token + "x")
	assert.Error(t, err)
}
