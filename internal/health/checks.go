package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakura-poetry/poetryctl/internal/session"
)

// StorageChecker reads the durable token.
type StorageChecker struct {
	storage session.TokenStorage
}

// NewStorageChecker creates a checker for storage.
func NewStorageChecker(storage session.TokenStorage) *StorageChecker {
	return &StorageChecker{storage: storage}
}

func (c *StorageChecker) Name() string { return "token-storage" }

func (c *StorageChecker) Check(ctx context.Context) *Result {
	token, err := c.storage.Load(ctx)
	if err != nil {
		return Unhealthy("token storage is unreadable").WithDetail("error", err.Error())
	}
	if token == "" {
		return Healthy("readable, no token stored")
	}
	return Healthy("readable, token stored").WithDetail("token_fp", session.Fingerprint(token))
}

// RedisChecker pings the Redis server behind RedisStorage.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a checker for client.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) *Result {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return Unhealthy("redis did not answer PING").WithDetail("error", err.Error())
	}
	return Healthy("PONG")
}

// SessionChecker inspects the stored token's claims without calling the
// server.
type SessionChecker struct {
	store *session.Store
	now   func() time.Time
}

// NewSessionChecker creates a checker for store.
func NewSessionChecker(store *session.Store) *SessionChecker {
	return &SessionChecker{store: store, now: time.Now}
}

func (c *SessionChecker) Name() string { return "session" }

func (c *SessionChecker) Check(ctx context.Context) *Result {
	if !c.store.IsLoggedIn() {
		return Degraded("not logged in")
	}
	claims, err := c.store.Claims()
	if err != nil {
		return Healthy("logged in with an opaque token")
	}

	var res *Result
	switch {
	case claims.Expired(c.now()):
		res = Degraded(fmt.Sprintf("token expired at %s", claims.ExpiresAt.Format(time.RFC3339)))
	case claims.ExpiresAt.IsZero():
		res = Healthy("logged in, token does not expire")
	default:
		res = Healthy(fmt.Sprintf("logged in until %s", claims.ExpiresAt.Format(time.RFC3339)))
	}
	if claims.Subject != "" {
		res.WithDetail("subject", claims.Subject)
	}
	return res
}

// BackendChecker sends a bare GET to the backend's base URL. It bypasses
// the gateway so a diagnostic never touches the session.
type BackendChecker struct {
	baseURL string
	client  *http.Client
}

// NewBackendChecker creates a checker for baseURL. A nil client means
// http.DefaultClient.
func NewBackendChecker(baseURL string, client *http.Client) *BackendChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &BackendChecker{baseURL: baseURL, client: client}
}

func (c *BackendChecker) Name() string { return "backend" }

func (c *BackendChecker) Check(ctx context.Context) *Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Unhealthy("invalid backend URL").WithDetail("error", err.Error())
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return Unhealthy("backend is unreachable").WithDetail("error", err.Error())
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()

	res := Healthy("reachable")
	if resp.StatusCode >= http.StatusInternalServerError {
		res = Degraded(fmt.Sprintf("reachable but answered %d", resp.StatusCode))
	}
	res.Latency = time.Since(start)
	return res.WithDetail("status", resp.StatusCode)
}

var (
	_ Checker = (*StorageChecker)(nil)
	_ Checker = (*RedisChecker)(nil)
	_ Checker = (*SessionChecker)(nil)
	_ Checker = (*BackendChecker)(nil)
)
