package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
)

// Authentication service endpoints.
const (
	pathServiceLogin  = "/api/v1/service/jwt/create"
	pathServiceVerify = "/api/v1/service/jwt/verify"
	pathClientCreate  = "/api/v1/client/jwt/create"
	pathClientVerify  = "/api/v1/client/jwt/verify"
	pathClientUpdate  = "/api/v1/client/jwt/update"
)

// tokenRefreshSkew renews the service's own token this long before it expires.
const tokenRefreshSkew = 30 * time.Second

// ErrAuthUnavailable is returned when the authentication service cannot be reached
// or answers with something other than a token decision.
var ErrAuthUnavailable = errors.New("authentication service unavailable")

// ClientConfig configures the authentication service client.
type ClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Login    string
	Password string
}

// Client talks to the authentication service. It verifies tokens remotely and
// issues client token pairs. Outbound calls are authorized with the service's
// own access token, obtained by logging in and reused until it expires.
type Client struct {
	baseURL    string
	httpClient *http.Client
	login      string
	password   string
	roles      *RoleTable

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

var (
	_ Verifier    = (*Client)(nil)
	_ TokenIssuer = (*Client)(nil)
)

// NewClient creates a client for the authentication service at cfg.BaseURL.
func NewClient(cfg ClientConfig, roles *RoleTable) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL for auth service: %w", err)
	}
	if roles == nil {
		return nil, errors.New("role table is required")
	}
	if cfg.Login == "" || cfg.Password == "" {
		middleware.Logger.Warn("service credentials are not set, calls to the auth service will likely fail")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		login:      cfg.Login,
		password:   cfg.Password,
		roles:      roles,
	}, nil
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type verifyRequest struct {
	AccessToken string `json:"access_token"`
}

type createClientRequest struct {
	ClientID   string `json:"client_id"`
	ClientRole string `json:"client_role"`
	ExpireIn   *int   `json:"expire_in,omitempty"`
}

type updateClientRequest struct {
	ClientAccessToken  string `json:"client_access_token"`
	ClientRefreshToken string `json:"client_refresh_token"`
}

type wirePayload struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	Exp  int64  `json:"exp"`
}

type verifyResponse struct {
	IsVerify bool                `json:"is_verify"`
	Payload  *wirePayload        `json:"payload"`
	Error    *models.ErrorSchema `json:"error"`
}

// statusError is a non-2xx answer from the authentication service.
type statusError struct {
	status int
	schema models.ErrorSchema
}

func (e *statusError) Error() string {
	return fmt.Sprintf("auth service returned status %d: %s", e.status, e.schema.Error)
}

// VerifyServiceToken implements Verifier.
func (c *Client) VerifyServiceToken(ctx context.Context, token string) (*ServicePayload, error) {
	p, err := c.verify(ctx, pathServiceVerify, kindService, token, models.CodeJWTInvalid)
	if err != nil {
		return nil, err
	}
	role, ok := c.roles.ServiceRole(p.Role)
	if !ok {
		observability.TokenVerifications.WithLabelValues(kindService, "invalid").Inc()
		return nil, models.NewJWTInvalidError(fmt.Sprintf("unknown service role %q", p.Role))
	}
	observability.TokenVerifications.WithLabelValues(kindService, "ok").Inc()
	return &ServicePayload{Sub: p.Sub, Role: role, ExpiresAt: time.Unix(p.Exp, 0).UTC()}, nil
}

// VerifyClientToken implements Verifier.
func (c *Client) VerifyClientToken(ctx context.Context, token string) (*ClientPayload, error) {
	p, err := c.verify(ctx, pathClientVerify, kindClient, token, models.CodeClientJWTInvalid)
	if err != nil {
		return nil, err
	}
	role, ok := c.roles.ClientRole(p.Role)
	if !ok {
		observability.TokenVerifications.WithLabelValues(kindClient, "invalid").Inc()
		return nil, models.NewClientJWTInvalidError(fmt.Sprintf("unknown client role %q", p.Role))
	}
	observability.TokenVerifications.WithLabelValues(kindClient, "ok").Inc()
	return &ClientPayload{Sub: p.Sub, Role: role, ExpiresAt: time.Unix(p.Exp, 0).UTC()}, nil
}

func (c *Client) verify(ctx context.Context, path, kind, token, code string) (*wirePayload, error) {
	var resp verifyResponse
	if err := c.call(ctx, path, verifyRequest{AccessToken: token}, &resp); err != nil {
		var se *statusError
		if !errors.As(err, &se) || se.status >= http.StatusInternalServerError {
			observability.TokenVerifications.WithLabelValues(kind, "error").Inc()
			return nil, models.NewInternalError(err)
		}
		resp = verifyResponse{Error: &se.schema}
	}
	if !resp.IsVerify || resp.Payload == nil || resp.Payload.Sub == "" {
		observability.TokenVerifications.WithLabelValues(kind, "invalid").Inc()
		appErr := &models.AppError{Code: code, Message: "token was rejected by the authentication service"}
		if resp.Error != nil && resp.Error.Error != "" {
			appErr.Code = resp.Error.Error
			if resp.Error.Extra != "" {
				appErr.Message = resp.Error.Extra
			}
		}
		return nil, appErr
	}
	return resp.Payload, nil
}

// CreateClientTokens issues a token pair for a newly registered user.
func (c *Client) CreateClientTokens(ctx context.Context, clientID, role string, expireIn *int) (*TokenPair, error) {
	var pair TokenPair
	err := c.call(ctx, pathClientCreate, createClientRequest{ClientID: clientID, ClientRole: role, ExpireIn: expireIn}, &pair)
	if err != nil {
		return nil, issueError(err)
	}
	return &pair, nil
}

// UpdateClientTokens exchanges the user's refresh token for a new pair.
func (c *Client) UpdateClientTokens(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	err := c.call(ctx, pathClientUpdate, updateClientRequest{ClientAccessToken: accessToken, ClientRefreshToken: refreshToken}, &pair)
	if err != nil {
		return nil, issueError(err)
	}
	return &pair, nil
}

// issueError keeps a refusal from the authentication service as a client token
// error and hides transport failures behind INTERNAL_ERROR.
func issueError(err error) error {
	var se *statusError
	if errors.As(err, &se) && se.status < http.StatusInternalServerError {
		code, msg := se.schema.Error, se.schema.Extra
		if code == "" {
			code = models.CodeClientJWTInvalid
		}
		return &models.AppError{Code: code, Message: msg, Err: err}
	}
	return models.NewInternalError(err)
}

// call posts body to path with the service token, renewing the token once on 401.
func (c *Client) call(ctx context.Context, path string, body, out any) error {
	token, err := c.serviceToken(ctx, false)
	if err != nil {
		return err
	}
	err = c.post(ctx, path, token, body, out)
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusUnauthorized {
		if token, err = c.serviceToken(ctx, true); err != nil {
			return err
		}
		err = c.post(ctx, path, token, body, out)
	}
	return err
}

// serviceToken returns the cached service access token, logging in when it is
// missing, about to expire, or force is set.
func (c *Client) serviceToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.token != "" && (c.tokenExp.IsZero() || time.Now().Add(tokenRefreshSkew).Before(c.tokenExp)) {
		return c.token, nil
	}

	var pair TokenPair
	if err := c.post(ctx, pathServiceLogin, "", loginRequest{Login: c.login, Password: c.password}, &pair); err != nil {
		return "", fmt.Errorf("%w: service login: %v", ErrAuthUnavailable, err)
	}
	if pair.AccessToken == "" {
		return "", fmt.Errorf("service login: %w: empty access token", ErrAuthUnavailable)
	}

	c.token = pair.AccessToken
	c.tokenExp = time.Time{}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(pair.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
		c.tokenExp = claims.ExpiresAt.Time
	}
	middleware.Logger.InfoContext(ctx, "logged in to auth service", "expires_at", c.tokenExp)
	return c.token, nil
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) (err error) {
	endpoint := c.baseURL + path
	ctx, end := observability.StartClientSpan(ctx, "auth "+path,
		attribute.String("http.method", http.MethodPost),
		attribute.String("http.url", endpoint),
	)
	defer func() { end(err) }()

	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.AuthRequestLatency.WithLabelValues(path, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("%w: %w", ErrAuthUnavailable, err)
	}
	defer resp.Body.Close()
	observability.AuthRequestLatency.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrAuthUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		middleware.Logger.WarnContext(ctx, "auth service error response", "path", path, "status", resp.StatusCode)
		return &statusError{status: resp.StatusCode, schema: decodeErrorBody(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: invalid response body: %w", ErrAuthUnavailable, err)
	}
	return nil
}

// decodeErrorBody understands {"detail": [schema]}, {"detail": schema} and a bare schema.
func decodeErrorBody(raw []byte) models.ErrorSchema {
	var wrapped struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Detail) > 0 {
		var list []models.ErrorSchema
		if err := json.Unmarshal(wrapped.Detail, &list); err == nil && len(list) > 0 {
			return list[0]
		}
		var one models.ErrorSchema
		if err := json.Unmarshal(wrapped.Detail, &one); err == nil {
			return one
		}
	}
	var bare models.ErrorSchema
	_ = json.Unmarshal(raw, &bare)
	return bare
}
