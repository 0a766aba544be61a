package auth

import (
	"context"
	"errors"
	"fmt"

	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/observability"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the body of tokens signed by the authentication service.
type Claims struct {
	Role string `json:"role"`
	// Type is "service" or "client"; a token of one kind is rejected where the other is expected.
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies tokens locally with the HMAC secret shared with the
// authentication service.
type JWTVerifier struct {
	secret []byte
	issuer string
	roles  *RoleTable
}

var _ Verifier = (*JWTVerifier)(nil)

// NewJWTVerifier returns a verifier for tokens signed with secret by issuer.
func NewJWTVerifier(secret, issuer string, roles *RoleTable) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if roles == nil {
		return nil, errors.New("role table is required")
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer, roles: roles}, nil
}

func (v *JWTVerifier) parse(token, kind string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.New(tokenErrorMessage(err))
	}
	if claims.Type != kind {
		return nil, fmt.Errorf("expected a %s token", kind)
	}
	if claims.Subject == "" {
		return nil, errors.New("token subject is missing")
	}
	return claims, nil
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "token issuer is invalid"
	}
	return "token is invalid"
}

// VerifyServiceToken implements Verifier.
func (v *JWTVerifier) VerifyServiceToken(ctx context.Context, token string) (*ServicePayload, error) {
	claims, err := v.parse(token, kindService)
	if err == nil {
		role, ok := v.roles.ServiceRole(claims.Role)
		if ok {
			observability.TokenVerifications.WithLabelValues(kindService, "ok").Inc()
			return &ServicePayload{Sub: claims.Subject, Role: role, ExpiresAt: claims.ExpiresAt.UTC()}, nil
		}
		err = fmt.Errorf("unknown service role %q", claims.Role)
	}

	observability.TokenVerifications.WithLabelValues(kindService, "invalid").Inc()
	middleware.Logger.DebugContext(ctx, "service token rejected", "token", tokenSnippet(token), "error", err)
	return nil, models.NewJWTInvalidError(err.Error())
}

// VerifyClientToken implements Verifier.
func (v *JWTVerifier) VerifyClientToken(ctx context.Context, token string) (*ClientPayload, error) {
	claims, err := v.parse(token, kindClient)
	if err == nil {
		role, ok := v.roles.ClientRole(claims.Role)
		if ok {
			observability.TokenVerifications.WithLabelValues(kindClient, "ok").Inc()
			return &ClientPayload{Sub: claims.Subject, Role: role, ExpiresAt: claims.ExpiresAt.UTC()}, nil
		}
		err = fmt.Errorf("unknown client role %q", claims.Role)
	}

	observability.TokenVerifications.WithLabelValues(kindClient, "invalid").Inc()
	middleware.Logger.DebugContext(ctx, "client token rejected", "token", tokenSnippet(token), "error", err)
	return nil, models.NewClientJWTInvalidError(err.Error())
}

// tokenSnippet returns a prefix of the token that is safe to log.
func tokenSnippet(token string) string {
	const limit = 15
	if len(token) > limit {
		return token[:limit] + "..."
	}
	return token
}
