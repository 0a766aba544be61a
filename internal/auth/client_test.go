package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"patisson-users/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthService mimics the authentication service endpoints used by Client.
type fakeAuthService struct {
	t       *testing.T
	server  *httptest.Server
	logins  atomic.Int32
	current atomic.Value // service token currently accepted
	lastReq atomic.Value // decoded body of the last non-login request
}

func newFakeAuthService(t *testing.T) *fakeAuthService {
	f := &fakeAuthService{t: t}
	f.current.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc(pathServiceLogin, func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Login != "users" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":[{"error":"INVALID_PARAMETERS"}]}`))
			return
		}
		n := f.logins.Add(1)
		claims := claimsFor(kindService, "users", "AUTHENTICATION", time.Hour)
		claims.ID = strconv.Itoa(int(n)) // distinct per login
		token := signToken(t, testSecret, claims)
		f.current.Store(token)
		writeJSON(w, TokenPair{AccessToken: token, RefreshToken: "r"})
	})
	mux.HandleFunc(pathServiceVerify, f.authorized(func(w http.ResponseWriter, body map[string]any) {
		if body["access_token"] == "good-service" {
			writeJSON(w, verifyResponse{IsVerify: true, Payload: &wirePayload{Sub: "api-gateway", Role: "API_GATEWAY", Exp: time.Now().Add(time.Hour).Unix()}})
			return
		}
		writeJSON(w, verifyResponse{Error: &models.ErrorSchema{Error: models.CodeJWTInvalid, Extra: "bad token"}})
	}))
	mux.HandleFunc(pathClientVerify, f.authorized(func(w http.ResponseWriter, body map[string]any) {
		switch body["access_token"] {
		case "good-client":
			writeJSON(w, verifyResponse{IsVerify: true, Payload: &wirePayload{Sub: "user-1", Role: "MEMBER", Exp: time.Now().Add(time.Hour).Unix()}})
		case "ghost-role":
			writeJSON(w, verifyResponse{IsVerify: true, Payload: &wirePayload{Sub: "user-1", Role: "GHOST", Exp: time.Now().Add(time.Hour).Unix()}})
		default:
			writeJSON(w, verifyResponse{Error: &models.ErrorSchema{Error: models.CodeClientJWTInvalid}})
		}
	}))
	mux.HandleFunc(pathClientCreate, f.authorized(func(w http.ResponseWriter, body map[string]any) {
		writeJSON(w, TokenPair{AccessToken: "access-" + body["client_id"].(string), RefreshToken: "refresh"})
	}))
	mux.HandleFunc(pathClientUpdate, f.authorized(func(w http.ResponseWriter, body map[string]any) {
		if body["client_refresh_token"] != "refresh" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"detail":{"error":"CLIENT_JWT_INVALID","extra":"refresh token expired"}}`))
			return
		}
		writeJSON(w, TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"})
	}))

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAuthService) authorized(h func(http.ResponseWriter, map[string]any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.current.Load().(string) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.lastReq.Store(body)
		h(w, body)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeAuthService, password string) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{BaseURL: f.server.URL, Timeout: time.Second, Login: "users", Password: password}, testRoles(t))
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "::not a url"}, testRoles(t))
	assert.Error(t, err)
}

func TestClient_VerifyServiceToken(t *testing.T) {
	f := newFakeAuthService(t)
	c := newTestClient(t, f, "secret")

	payload, err := c.VerifyServiceToken(t.Context(), "good-service")
	require.NoError(t, err)
	assert.Equal(t, "api-gateway", payload.Sub)
	assert.True(t, payload.Role.Permissions.UserReg)

	_, err = c.VerifyServiceToken(t.Context(), "bad")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeJWTInvalid))

	assert.Equal(t, int32(1), f.logins.Load(), "service token is reused between calls")
}

func TestClient_VerifyClientToken(t *testing.T) {
	f := newFakeAuthService(t)
	c := newTestClient(t, f, "secret")

	payload, err := c.VerifyClientToken(t.Context(), "good-client")
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.Sub)
	assert.Equal(t, ClientRoleMember, payload.Role.Name)

	_, err = c.VerifyClientToken(t.Context(), "bad")
	assert.True(t, models.HasCode(err, models.CodeClientJWTInvalid))

	_, err = c.VerifyClientToken(t.Context(), "ghost-role")
	assert.True(t, models.HasCode(err, models.CodeClientJWTInvalid))
}

func TestClient_RenewsServiceTokenOnUnauthorized(t *testing.T) {
	f := newFakeAuthService(t)
	c := newTestClient(t, f, "secret")

	_, err := c.VerifyClientToken(t.Context(), "good-client")
	require.NoError(t, err)

	// The auth service forgets the token, for example after a restart.
	f.current.Store("rotated")

	_, err = c.VerifyClientToken(t.Context(), "good-client")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.logins.Load())
}

func TestClient_LoginFailure(t *testing.T) {
	f := newFakeAuthService(t)
	c := newTestClient(t, f, "wrong")

	_, err := c.VerifyServiceToken(t.Context(), "good-service")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeInternal))
}

func TestClient_Unreachable(t *testing.T) {
	f := newFakeAuthService(t)
	c := newTestClient(t, f, "secret")
	f.server.Close()

	_, err := c.VerifyClientToken(t.Context(), "good-client")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.ErrorIs(t, err, ErrAuthUnavailable)
}

func TestClient_CreateClientTokens(t *testing.T) {
	f := newFakeAuthService(t)
	c := newTestClient(t, f, "secret")

	expire := 3600
	pair, err := c.CreateClientTokens(t.Context(), "user-9", ClientRoleMember, &expire)
	require.NoError(t, err)
	assert.Equal(t, &TokenPair{AccessToken: "access-user-9", RefreshToken: "refresh"}, pair)

	body := f.lastReq.Load().(map[string]any)
	assert.Equal(t, "MEMBER", body["client_role"])
	assert.EqualValues(t, 3600, body["expire_in"])
}

func TestClient_UpdateClientTokens(t *testing.T) {
	f := newFakeAuthService(t)
	c := newTestClient(t, f, "secret")

	pair, err := c.UpdateClientTokens(t.Context(), "access", "refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", pair.AccessToken)

	_, err = c.UpdateClientTokens(t.Context(), "access", "stale")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeClientJWTInvalid, appErr.Code)
	assert.Equal(t, "refresh token expired", appErr.Message)
}

func TestDecodeErrorBody(t *testing.T) {
	tests := map[string]models.ErrorSchema{
		`{"detail":[{"error":"ACCESS_ERROR","extra":"x"}]}`: {Error: "ACCESS_ERROR", Extra: "x"},
		`{"detail":{"error":"JWT_INVALID"}}`:                {Error: "JWT_INVALID"},
		`{"error":"NOT_FOUND"}`:                             {Error: "NOT_FOUND"},
		`<html>oops</html>`:                                 {},
	}
	for raw, want := range tests {
		assert.Equal(t, want, decodeErrorBody([]byte(raw)), raw)
	}
}
