package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"patisson-users/internal/cache"
	"patisson-users/internal/middleware"
	"patisson-users/internal/observability"

	"github.com/redis/go-redis/v9"
)

// CachingVerifier caches verified service token payloads in Redis so repeated
// calls from the same service skip verification. Client tokens always go to
// the wrapped verifier. Redis failures fall through to it as well.
type CachingVerifier struct {
	next Verifier
	rdb  *redis.Client
	ttl  time.Duration
	now  func() time.Time
}

var _ Verifier = (*CachingVerifier)(nil)

// NewCachingVerifier wraps next. A nil rdb or non-positive ttl disables caching.
func NewCachingVerifier(next Verifier, rdb *redis.Client, ttl time.Duration) *CachingVerifier {
	return &CachingVerifier{next: next, rdb: rdb, ttl: ttl, now: time.Now}
}

func serviceTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:service:" + hex.EncodeToString(sum[:])
}

// VerifyServiceToken implements Verifier.
func (v *CachingVerifier) VerifyServiceToken(ctx context.Context, token string) (*ServicePayload, error) {
	if v.rdb == nil || v.ttl <= 0 {
		return v.next.VerifyServiceToken(ctx, token)
	}

	key := serviceTokenKey(token)
	var cached ServicePayload
	err := cache.GetJSON(ctx, v.rdb, key, &cached)
	switch {
	case err == nil && cached.ExpiresAt.After(v.now()):
		observability.TokenCacheLookups.WithLabelValues("hit").Inc()
		return &cached, nil
	case err == nil, errors.Is(err, cache.ErrMiss):
		observability.TokenCacheLookups.WithLabelValues("miss").Inc()
	default:
		observability.TokenCacheLookups.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "token cache read failed", "error", err)
	}

	payload, err := v.next.VerifyServiceToken(ctx, token)
	if err != nil {
		return nil, err
	}

	ttl := min(v.ttl, payload.ExpiresAt.Sub(v.now()))
	if ttl > 0 {
		if err := cache.SetJSON(ctx, v.rdb, key, payload, ttl); err != nil {
			middleware.Logger.WarnContext(ctx, "token cache write failed", "error", err)
		}
	}
	return payload, nil
}

// VerifyClientToken implements Verifier.
func (v *CachingVerifier) VerifyClientToken(ctx context.Context, token string) (*ClientPayload, error) {
	return v.next.VerifyClientToken(ctx, token)
}
