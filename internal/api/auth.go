package api

import (
	"context"
	"net/http"

	"github.com/sakura-poetry/poetryctl/internal/gateway"
	"github.com/sakura-poetry/poetryctl/internal/session"
)

// Auth endpoints.
const (
	PathLogin    = "/api/auth/login"
	PathRegister = "/api/auth/register"
	PathProfile  = "/api/auth/info"
	PathLogout   = "/api/auth/logout"
	PathRefresh  = "/api/auth/refresh"
)

// AuthAPI talks to the authentication endpoints. It satisfies
// session.Authenticator.
type AuthAPI struct {
	client *gateway.Client
}

var _ session.Authenticator = (*AuthAPI)(nil)

// NewAuthAPI creates an AuthAPI on the gateway.
func NewAuthAPI(client *gateway.Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// RegisterRequest is the self-service sign-up payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

// Login exchanges credentials for a token. It writes nothing to the session;
// session.Store.Login does that.
func (a *AuthAPI) Login(ctx context.Context, creds session.Credentials) (*session.LoginResult, error) {
	return gateway.Call[*session.LoginResult](ctx, a.client, gateway.Request{
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   creds,
	})
}

// Profile fetches the signed-in user's profile.
func (a *AuthAPI) Profile(ctx context.Context) (*session.UserProfile, error) {
	return gateway.Call[*session.UserProfile](ctx, a.client, gateway.Request{
		Method: http.MethodGet,
		Path:   PathProfile,
	})
}

// Logout tells the server the token is no longer in use. Callers treat it as
// best effort; the local session is cleared regardless.
func (a *AuthAPI) Logout(ctx context.Context) error {
	_, err := a.client.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   PathLogout,
	})
	return err
}

// Refresh asks the server for a fresh token for the current session.
func (a *AuthAPI) Refresh(ctx context.Context) (*session.LoginResult, error) {
	return gateway.Call[*session.LoginResult](ctx, a.client, gateway.Request{
		Method: http.MethodPost,
		Path:   PathRefresh,
	})
}

// Register creates an account. The server replies with a confirmation
// message.
func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) (string, error) {
	return gateway.Call[string](ctx, a.client, gateway.Request{
		Method: http.MethodPost,
		Path:   PathRegister,
		Body:   req,
	})
}
