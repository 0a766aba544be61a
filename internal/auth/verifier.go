package auth

import (
	"context"
	"time"
)

// ServicePayload is the verified content of a service access token.
type ServicePayload struct {
	Sub       string    `json:"sub"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"exp"`
}

// ClientPayload is the verified content of a client (end user) access token.
// Sub is the user id.
type ClientPayload struct {
	Sub       string    `json:"sub"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenPair is issued by the authentication service and relayed to callers unchanged.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Verifier checks access tokens. Failures are JWT_INVALID for service tokens
// and CLIENT_JWT_INVALID for client tokens.
type Verifier interface {
	VerifyServiceToken(ctx context.Context, token string) (*ServicePayload, error)
	VerifyClientToken(ctx context.Context, token string) (*ClientPayload, error)
}

// TokenIssuer asks the authentication service for client token pairs.
type TokenIssuer interface {
	CreateClientTokens(ctx context.Context, clientID, role string, expireIn *int) (*TokenPair, error)
	UpdateClientTokens(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
}

const (
	kindService = "service"
	kindClient  = "client"
)

// MissingTokenMessage is the extra text reported when no token was supplied.
const MissingTokenMessage = "The server token is incorrect (missing or empty)"
