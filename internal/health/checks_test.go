package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-poetry/poetryctl/internal/log"
	"github.com/sakura-poetry/poetryctl/internal/session"
)

func TestStorageChecker(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	c := NewStorageChecker(storage)

	res := c.Check(ctx)
	assert.Equal(t, StatusHealthy, res.Status)
	assert.NotContains(t, res.Details, "token_fp")

	require.NoError(t, storage.Save(ctx, "T1"))
	res = c.Check(ctx)
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, session.Fingerprint("T1"), res.Details["token_fp"])
}

func TestStorageCheckerCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	res := NewStorageChecker(session.NewFileStorage(path)).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisChecker(client)
	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)

	mr.Close()
	assert.Equal(t, StatusUnhealthy, c.Check(context.Background()).Status)
}

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSessionChecker(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  Status
	}{
		{"no session", "", StatusDegraded},
		{"opaque token", "opaque", StatusHealthy},
		{"valid jwt", signed(t, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}), StatusHealthy},
		{"expired jwt", signed(t, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))}), StatusDegraded},
		{"jwt without exp", signed(t, jwt.RegisteredClaims{Subject: "alice"}), StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := session.NewMemoryStorage()
			if tt.token != "" {
				require.NoError(t, storage.Save(ctx, tt.token))
			}
			store, err := session.NewStore(ctx, storage, session.WithLogger(log.Discard()))
			require.NoError(t, err)

			c := NewSessionChecker(store)
			c.now = func() time.Time { return now }

			assert.Equal(t, tt.want, c.Check(ctx).Status)
		})
	}
}

func TestBackendChecker(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	t.Cleanup(srv.Close)

	c := NewBackendChecker(srv.URL, srv.Client())

	res := c.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, http.StatusOK, res.Details["status"])

	status.Store(http.StatusNotFound)
	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status, "any answer means reachable")

	status.Store(http.StatusBadGateway)
	assert.Equal(t, StatusDegraded, c.Check(context.Background()).Status)

	srv.Close()
	assert.Equal(t, StatusUnhealthy, c.Check(context.Background()).Status)
}
