package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-that-is-long-enough-for-hs256"
	testIssuer = "authentication"
)

func testRoles(t *testing.T) *RoleTable {
	t.Helper()
	roles, err := LoadRoles("")
	require.NoError(t, err)
	return roles
}

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(kind, sub, role string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		Role: role,
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    testIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
