package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"patisson-users/internal/auth"
	"patisson-users/internal/config"
	"patisson-users/internal/database"
	"patisson-users/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

// Service tokens understood by fakeVerifier.
const (
	gatewayToken = "gateway-token"
	booksToken   = "books-token"
)

var (
	gatewayRole   = auth.Role{Name: "API_GATEWAY", Permissions: auth.Permissions{UserReg: true, UsersInfo: true, LibrariesInfo: true}}
	booksRole     = auth.Role{Name: "BOOKS", Permissions: auth.Permissions{UsersInfo: true, LibrariesInfo: true}}
	memberRole    = auth.Role{Name: "MEMBER", Permissions: auth.Permissions{CreateLib: true}}
	moderatorRole = auth.Role{Name: "MODERATOR", Permissions: auth.Permissions{CreateLib: true, CreateBan: true}}
)

type fakeVerifier struct {
	clients map[string]*auth.ClientPayload
	down    bool
}

func (v *fakeVerifier) VerifyServiceToken(_ context.Context, token string) (*auth.ServicePayload, error) {
	if v.down {
		return nil, models.NewInternalError(auth.ErrAuthUnavailable)
	}
	switch token {
	case gatewayToken:
		return &auth.ServicePayload{Sub: "api-gateway", Role: gatewayRole, ExpiresAt: testNow.Add(time.Hour)}, nil
	case booksToken:
		return &auth.ServicePayload{Sub: "books", Role: booksRole, ExpiresAt: testNow.Add(time.Hour)}, nil
	}
	return nil, models.NewJWTInvalidError("token signature is invalid")
}

func (v *fakeVerifier) VerifyClientToken(_ context.Context, token string) (*auth.ClientPayload, error) {
	if p, ok := v.clients[token]; ok {
		return p, nil
	}
	return nil, models.NewClientJWTInvalidError("token has expired")
}

type issueCall struct {
	clientID, role, access, refresh string
	expireIn                        *int
}

type fakeIssuer struct {
	calls []issueCall
	err   error
}

func (f *fakeIssuer) CreateClientTokens(_ context.Context, clientID, role string, expireIn *int) (*auth.TokenPair, error) {
	f.calls = append(f.calls, issueCall{clientID: clientID, role: role, expireIn: expireIn})
	if f.err != nil {
		return nil, f.err
	}
	return &auth.TokenPair{AccessToken: "access-" + clientID, RefreshToken: "refresh-" + clientID}, nil
}

func (f *fakeIssuer) UpdateClientTokens(_ context.Context, access, refresh string) (*auth.TokenPair, error) {
	f.calls = append(f.calls, issueCall{access: access, refresh: refresh})
	if f.err != nil {
		return nil, f.err
	}
	return &auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
}

type fixture struct {
	app      *fiber.App
	server   *Server
	db       *gorm.DB
	verifier *fakeVerifier
	issuer   *fakeIssuer
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                 "test",
		Port:                "0",
		ServiceName:         "users-test",
		PasswordHashCost:    bcrypt.MinCost,
		RateLimitPerMinute:  600,
		CreateUserRateLimit: 60,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newFixture(t *testing.T, rdb *redis.Client) *fixture {
	t.Helper()
	f := &fixture{
		db:       setupTestDB(t),
		verifier: &fakeVerifier{clients: map[string]*auth.ClientPayload{}},
		issuer:   &fakeIssuer{},
	}
	s, err := NewServerWithDeps(testConfig(), Deps{
		DB:       f.db,
		Redis:    rdb,
		Verifier: f.verifier,
		Issuer:   f.issuer,
		Clock:    func() time.Time { return testNow },
	})
	require.NoError(t, err)
	f.server = s
	f.app = s.NewApp()
	return f
}

// seedUser stores a user directly and registers a client token for it.
func (f *fixture) seedUser(t *testing.T, username string, role auth.Role) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: username, Password: "x", Role: role.Name}
	require.NoError(t, f.db.Create(u).Error)
	token := "client-" + username
	f.verifier.clients[token] = &auth.ClientPayload{Sub: u.ID, Role: role, ExpiresAt: testNow.Add(time.Hour)}
	return u, token
}

type response struct {
	status int
	body   map[string]any
}

func (r response) detail(t *testing.T) map[string]any {
	t.Helper()
	detail, ok := r.body["detail"].([]any)
	require.True(t, ok, "expected detail list in %v", r.body)
	require.Len(t, detail, 1)
	return detail[0].(map[string]any)
}

func (f *fixture) post(t *testing.T, path string, body any, headers map[string]string) response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := response{status: resp.StatusCode}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out.body), string(data))
	}
	return out
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func withClient(service, client string) map[string]string {
	h := bearer(service)
	h[clientTokenHeader] = client
	return h
}
