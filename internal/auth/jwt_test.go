package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-0123456789"

func TestJWTManager_GenerateAndValidateAccessToken(t *testing.T) {
	m := NewJWTManager(testSecret, 15*time.Minute)

	token, err := m.GenerateAccessToken(42, "a@b.com", "ROLE_USER")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "ROLE_USER", claims.Role)
	assert.Equal(t, "a@b.com", claims.Subject)
	assert.Equal(t, "devportal-api", claims.Issuer)
}

func TestJWTManager_ExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager(testSecret, -time.Minute)

	token, err := m.GenerateAccessToken(1, "a@b.com", "ROLE_USER")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_WrongSecretRejected(t *testing.T) {
	m1 := NewJWTManager(testSecret, 15*time.Minute)
	m2 := NewJWTManager("a-completely-different-secret-key-value", 15*time.Minute)

	token, err := m1.GenerateAccessToken(1, "a@b.com", "ROLE_USER")
	require.NoError(t, err)

	_, err = m2.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_MalformedTokenRejected(t *testing.T) {
	m := NewJWTManager(testSecret, 15*time.Minute)

	for _, tok := range []string{"", "garbage", "a.b.c", "Bearer x"} {
		_, err := m.ValidateAccessToken(tok)
		assert.Error(t, err, "token %q should be rejected", tok)
	}
}

func TestJWTManager_NoneAlgorithmRejected(t *testing.T) {
	m := NewJWTManager(testSecret, 15*time.Minute)

	// Header {"alg":"none","typ":"JWT"} with empty signature.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJhQGIuY29tIn0."
	_, err := m.ValidateAccessToken(unsigned)
	assert.Error(t, err)
}

func TestHasher_PasswordRoundTrip(t *testing.T) {
	h := NewHasherWithCost(4)

	hash, err := h.HashPassword("Password1")
	require.NoError(t, err)
	assert.NotEqual(t, "Password1", hash)

	assert.True(t, h.VerifyPassword("Password1", hash))
	assert.False(t, h.VerifyPassword("Password2", hash))
	assert.False(t, h.VerifyPassword("", hash))
}

func TestHasher_SamePasswordDifferentHashes(t *testing.T) {
	h := NewHasherWithCost(4)

	h1, err := h.HashPassword("Password1")
	require.NoError(t, err)
	h2, err := h.HashPassword("Password1")
	require.NoError(t, err)

	// bcrypt salts per hash.
	assert.NotEqual(t, h1, h2)
}

func TestHashLookupSecret_Deterministic(t *testing.T) {
	a := HashLookupSecret("some-token")
	b := HashLookupSecret("some-token")
	c := HashLookupSecret("other-token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
	assert.NotEqual(t, "some-token", a)
}

func TestNewRefreshTokenValue(t *testing.T) {
	t1, err := NewRefreshTokenValue()
	require.NoError(t, err)
	t2, err := NewRefreshTokenValue()
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
	// 32 bytes base64url without padding = 43 chars.
	assert.Len(t, t1, 43)
	assert.NotContains(t, t1, "+")
	assert.NotContains(t, t1, "/")
	assert.NotContains(t, t1, "=")
}

func TestNewAPIKeySecret_Format(t *testing.T) {
	key, err := NewAPIKeySecret()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "sk_"))
	assert.Len(t, key, 67)

	other, err := NewAPIKeySecret()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestDisplayPrefix(t *testing.T) {
	assert.Equal(t, "sk_ab12c...", DisplayPrefix("sk_ab12cdef0123456789"))
	assert.Equal(t, "sk_x...", DisplayPrefix("sk_x"))
}
