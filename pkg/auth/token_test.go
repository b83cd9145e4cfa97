package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anadolubroker/sigorta-backend/pkg/config"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "sigorta-auth"}
}

func signToken(t *testing.T, cfg config.JWTConfig, claims AccessTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	require.NoError(t, err)
	return signed
}

func validClaims(role enums.ActorRole) AccessTokenClaims {
	now := time.Now()
	return AccessTokenClaims{
		UserID: 7,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sigorta-auth",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	signed := signToken(t, cfg, validClaims(enums.ActorRoleAgent))

	claims, err := ParseAccessToken(cfg, signed)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, enums.ActorRoleAgent, claims.Actor().Role)
	assert.True(t, claims.Actor().IsAgent())
}

func TestParseAccessTokenRejectsBadRole(t *testing.T) {
	cfg := testJWTConfig()
	claims := validClaims(enums.ActorRole("superuser"))
	signed := signToken(t, cfg, claims)

	_, err := ParseAccessToken(cfg, signed)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	claims := validClaims(enums.ActorRoleCustomer)
	claims.Issuer = "someone-else"
	signed := signToken(t, cfg, claims)

	_, err := ParseAccessToken(cfg, signed)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	claims := validClaims(enums.ActorRoleCustomer)
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	signed := signToken(t, cfg, claims)

	_, err := ParseAccessToken(cfg, signed)
	require.Error(t, err)
}
