package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-poetry/poetryctl/internal/errors"
	"github.com/sakura-poetry/poetryctl/internal/gateway"
	"github.com/sakura-poetry/poetryctl/internal/log"
	"github.com/sakura-poetry/poetryctl/internal/session"
)

func TestAuthAPI_LoginAcceptsAccessToken(t *testing.T) {
	b := newBackend(t)
	b.on(http.MethodPost, PathLogin, ok(map[string]any{
		"accessToken": "T1", "tokenType": "Bearer", "expiresIn": 86400000, "userId": 1, "username": "alice",
	}))

	auth := NewAuthAPI(newGateway(t, b, &staticSession{}))
	res, err := auth.Login(context.Background(), session.Credentials{Username: "alice", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "T1", res.Token)
	assert.Equal(t, "Bearer", res.TokenType)

	req := b.last()
	assert.JSONEq(t, `{"username":"alice","password":"secret-pass"}`, req.Body)
	assert.Empty(t, req.Auth)
}

func TestAuthAPI_ProfileSendsToken(t *testing.T) {
	b := newBackend(t)
	b.on(http.MethodGet, PathProfile, ok(map[string]any{
		"userId": 1, "username": "alice", "roles": []string{"admin"}, "permissions": []string{"poetry:write"},
	}))

	auth := NewAuthAPI(newGateway(t, b, &staticSession{token: "T1"}))
	p, err := auth.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.True(t, p.HasRole("admin"))
	assert.Equal(t, "Bearer T1", b.last().Auth)
}

func TestAuthAPI_LogoutRefreshRegister(t *testing.T) {
	b := newBackend(t)
	b.on(http.MethodPost, PathLogout, ok("logged out"))
	b.on(http.MethodPost, PathRefresh, ok(map[string]any{"accessToken": "T2"}))
	b.on(http.MethodPost, PathRegister, ok("registered"))

	auth := NewAuthAPI(newGateway(t, b, &staticSession{token: "T1"}))
	ctx := context.Background()

	require.NoError(t, auth.Logout(ctx))
	assert.Equal(t, http.MethodPost, b.last().Method)

	res, err := auth.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", res.Token)

	msg, err := auth.Register(ctx, RegisterRequest{Username: "bob", Password: "secret-pass", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "registered", msg)
	assert.JSONEq(t, `{"username":"bob","password":"secret-pass","email":"bob@example.com"}`, b.last().Body)
}

// Store, gateway and AuthAPI wired together the way the CLI does it.
func newWiredStore(t *testing.T, b *backend, storage session.TokenStorage) (*session.Store, *AuthAPI) {
	t.Helper()
	store, err := session.NewStore(context.Background(), storage, session.WithLogger(log.Discard()))
	require.NoError(t, err)
	gw, err := gateway.New(gateway.Config{BaseURL: b.srv.URL}, store, gateway.WithLogger(log.Discard()))
	require.NoError(t, err)
	auth := NewAuthAPI(gw)
	store.Bind(auth)
	return store, auth
}

func TestLoginFlow_Success(t *testing.T) {
	b := newBackend(t)
	b.on(http.MethodPost, PathLogin, ok(map[string]any{"token": "T1"}))
	b.on(http.MethodGet, PathProfile, ok(map[string]any{"id": 1, "username": "alice"}))

	storage := session.NewMemoryStorage()
	store, _ := newWiredStore(t, b, storage)

	_, err := store.Login(context.Background(), session.Credentials{Username: "alice", Password: "secret-pass"})
	require.NoError(t, err)

	assert.Equal(t, "T1", store.Token())
	require.NotNil(t, store.Profile())
	assert.Equal(t, "alice", store.Profile().Username)
	persisted, _ := storage.Load(context.Background())
	assert.Equal(t, "T1", persisted)

	reqs := b.requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Auth)
	assert.Equal(t, "Bearer T1", reqs[1].Auth, "profile fetch carries the new token")
}

func TestLoginFlow_WrongPassword(t *testing.T) {
	b := newBackend(t)
	b.on(http.MethodPost, PathLogin, `{"code":401,"message":"bad username or password"}`)

	storage := session.NewMemoryStorage()
	store, _ := newWiredStore(t, b, storage)

	_, err := store.Login(context.Background(), session.Credentials{Username: "alice", Password: "wrong-pass"})
	require.Error(t, err)
	pe, isPoetry := errors.As(err)
	require.True(t, isPoetry)
	assert.Equal(t, errors.KindAuth, pe.Kind)
	assert.Equal(t, errors.ErrCodeInvalidCredentials, pe.Code)

	assert.False(t, store.IsLoggedIn())
	persisted, _ := storage.Load(context.Background())
	assert.Empty(t, persisted)
}

// A rejected re-login while a session exists: a 401 envelope drops the old
// token, any other rejection leaves it in place.
func TestLoginFlow_RejectedWithExistingSession(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantKind  errors.Kind
		wantToken string
	}{
		{"401 clears the stored session", `{"code":401,"message":"bad username or password"}`, errors.KindAuth, ""},
		{"business rejection keeps it", `{"code":10001,"message":"account locked"}`, errors.KindBusiness, "T0"},
		{"server failure keeps it", `{"code":500,"message":"db down"}`, errors.KindServer, "T0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			b.on(http.MethodPost, PathLogin, tt.body)

			ctx := context.Background()
			storage := session.NewMemoryStorage()
			require.NoError(t, storage.Save(ctx, "T0"))
			store, _ := newWiredStore(t, b, storage)
			require.Equal(t, "T0", store.Token())

			_, err := store.Login(ctx, session.Credentials{Username: "alice", Password: "wrong-pass"})
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, tt.wantKind))

			assert.Equal(t, tt.wantToken, store.Token())
			persisted, _ := storage.Load(ctx)
			assert.Equal(t, tt.wantToken, persisted)

			reqs := b.requests()
			require.Len(t, reqs, 1, "no profile fetch after a rejected login")
			assert.Equal(t, "Bearer T0", reqs[0].Auth)
		})
	}
}

func TestSessionExpiryClearsStore(t *testing.T) {
	b := newBackend(t)
	b.on(http.MethodPost, "/api/poetry/list", `{"code":401,"message":"token expired"}`)

	storage := session.NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), "T1"))
	store, _ := newWiredStore(t, b, storage)
	require.Equal(t, "T1", store.Token())

	_, err := NewCatalog(newGateway(t, b, store)).Poetry.List(context.Background(), Poetry{}, Page{})
	require.Error(t, err)
	assert.True(t, errors.IsSessionExpired(err))

	assert.False(t, store.IsLoggedIn())
	persisted, _ := storage.Load(context.Background())
	assert.Empty(t, persisted)
}
