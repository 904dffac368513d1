package jwt

import (
	"testing"
	"time"

	"friends-server/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expire time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "friends-server",
		ExpireTime: expire,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService(time.Hour)

	token, err := svc.GenerateToken("uid-123", map[string]interface{}{"username": "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", claims.Subject)
	assert.Equal(t, "friends-server", claims.Issuer)
	assert.Equal(t, "alice", claims.Data["username"])
}

func TestGenerateTokenRequiresUID(t *testing.T) {
	svc := newTestService(time.Hour)

	_, err := svc.GenerateToken("", nil)
	assert.Error(t, err)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := newTestService(time.Hour)

	token, err := svc.GenerateToken("uid-123", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.Error(t, err)

	_, err = svc.ValidateToken("")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestService(time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:     "other-secret",
		Issuer:     "friends-server",
		ExpireTime: time.Hour,
	})

	token, err := other.GenerateToken("uid-123", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestService(-time.Minute)

	token, err := svc.GenerateToken("uid-123", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
