package auth

import (
	"testing"
	"time"

	"patisson-users/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTVerifier(t *testing.T) {
	_, err := NewJWTVerifier("", testIssuer, testRoles(t))
	assert.Error(t, err)

	_, err = NewJWTVerifier(testSecret, testIssuer, nil)
	assert.Error(t, err)
}

func TestJWTVerifier_VerifyServiceToken(t *testing.T) {
	v, err := NewJWTVerifier(testSecret, testIssuer, testRoles(t))
	require.NoError(t, err)

	token := signToken(t, testSecret, claimsFor(kindService, "api-gateway", "API_GATEWAY", time.Hour))
	payload, err := v.VerifyServiceToken(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, "api-gateway", payload.Sub)
	assert.Equal(t, "API_GATEWAY", payload.Role.Name)
	assert.True(t, payload.Role.Permissions.UserReg)
	assert.WithinDuration(t, time.Now().Add(time.Hour), payload.ExpiresAt, 5*time.Second)
}

func TestJWTVerifier_RejectsServiceTokens(t *testing.T) {
	v, err := NewJWTVerifier(testSecret, testIssuer, testRoles(t))
	require.NoError(t, err)

	noExp := claimsFor(kindService, "svc", "API_GATEWAY", time.Hour)
	noExp.ExpiresAt = nil
	otherIssuer := claimsFor(kindService, "svc", "API_GATEWAY", time.Hour)
	otherIssuer.Issuer = "somebody-else"

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"expired", signToken(t, testSecret, claimsFor(kindService, "svc", "API_GATEWAY", -time.Minute))},
		{"wrong secret", signToken(t, "another-secret-another-secret-123", claimsFor(kindService, "svc", "API_GATEWAY", time.Hour))},
		{"client token", signToken(t, testSecret, claimsFor(kindClient, "user", "MEMBER", time.Hour))},
		{"unknown role", signToken(t, testSecret, claimsFor(kindService, "svc", "NOBODY", time.Hour))},
		{"no subject", signToken(t, testSecret, claimsFor(kindService, "", "API_GATEWAY", time.Hour))},
		{"no expiry", signToken(t, testSecret, noExp)},
		{"other issuer", signToken(t, testSecret, otherIssuer)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyServiceToken(t.Context(), tt.token)
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeJWTInvalid), "got %v", err)
		})
	}
}

func TestJWTVerifier_RejectsUnsignedTokens(t *testing.T) {
	v, err := NewJWTVerifier(testSecret, testIssuer, testRoles(t))
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claimsFor(kindService, "svc", "API_GATEWAY", time.Hour)).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.VerifyServiceToken(t.Context(), token)
	assert.True(t, models.HasCode(err, models.CodeJWTInvalid))
}

func TestJWTVerifier_VerifyClientToken(t *testing.T) {
	v, err := NewJWTVerifier(testSecret, testIssuer, testRoles(t))
	require.NoError(t, err)

	token := signToken(t, testSecret, claimsFor(kindClient, "user-1", "MODERATOR", time.Hour))
	payload, err := v.VerifyClientToken(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.Sub)
	assert.True(t, payload.Role.Permissions.CreateBan)

	service := signToken(t, testSecret, claimsFor(kindService, "svc", "API_GATEWAY", time.Hour))
	_, err = v.VerifyClientToken(t.Context(), service)
	assert.True(t, models.HasCode(err, models.CodeClientJWTInvalid))

	expired := signToken(t, testSecret, claimsFor(kindClient, "user-1", "MEMBER", -time.Second))
	_, err = v.VerifyClientToken(t.Context(), expired)
	assert.True(t, models.HasCode(err, models.CodeClientJWTInvalid))
}
