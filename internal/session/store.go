package session

import (
	"context"
	"strings"
	"sync"

	"github.com/sakura-poetry/poetryctl/internal/errors"
	"github.com/sakura-poetry/poetryctl/internal/log"
)

// Authenticator performs the network half of login and profile fetches.
// api.AuthAPI implements it on top of the gateway.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Profile(ctx context.Context) (*UserProfile, error)
}

// Snapshot is a consistent copy of the session at one instant.
type Snapshot struct {
	Token   string
	Profile *UserProfile
}

// Store is the single source of truth for who is logged in.
//
// Token and profile are guarded by one lock: the profile is only ever set
// while a token is present, and both are cleared together.
type Store struct {
	mu      sync.RWMutex
	token   string
	profile *UserProfile

	storage TokenStorage
	auth    Authenticator
	logger  *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithAuthenticator sets the authenticator used by Login and FetchProfile.
func WithAuthenticator(auth Authenticator) Option {
	return func(s *Store) {
		s.auth = auth
	}
}

// NewStore creates a store and hydrates it from storage.
func NewStore(ctx context.Context, storage TokenStorage, opts ...Option) (*Store, error) {
	s := &Store{storage: storage}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.DefaultLogger()
	}
	s.logger = s.logger.With("component", "session")

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Bind sets the authenticator after construction. The gateway needs the
// store and the authenticator needs the gateway, so one side is bound late.
func (s *Store) Bind(auth Authenticator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = auth
}

// Token returns the current token, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns a copy of the current profile, or nil.
func (s *Store) Profile() *UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// IsLoggedIn reports whether a token is present.
func (s *Store) IsLoggedIn() bool {
	return s.Token() != ""
}

// Snapshot returns token and profile read under the same lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Token: s.token, Profile: s.profile.Clone()}
}

// Claims parses the current token's claims.
func (s *Store) Claims() (Claims, error) {
	token := s.Token()
	if token == "" {
		return Claims{}, errors.NewStateError(errors.ErrCodeNoSession, "no token present")
	}
	return ParseClaims(token)
}

// Reload re-reads the durable token. A changed token drops the profile.
func (s *Store) Reload(ctx context.Context) error {
	token, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.token = token
		s.profile = nil
	}
	if token != "" {
		s.logger.Debug("session hydrated", "token_fp", Fingerprint(token))
	}
	return nil
}

// Login exchanges credentials for a token, stores it durably and then
// fetches the profile.
//
// A rejected login leaves the store untouched, except that a 401 envelope
// reaches the gateway's session-expiry path first and clears any existing
// session before Login returns. Login is not atomic across
// both steps: if the profile fetch fails the token stays stored and the
// profile stays unset, and the fetch error is returned with the result.
func (s *Store) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	auth, err := s.authenticator()
	if err != nil {
		return nil, err
	}

	res, err := auth.Login(ctx, creds)
	if err != nil {
		if pe, ok := errors.As(err); ok && pe.Kind == errors.KindAuth {
			return nil, errors.NewInvalidCredentialsError(pe.Message)
		}
		return nil, err
	}
	if res == nil || res.Token == "" {
		return nil, errors.New(errors.KindAuth, errors.ErrCodeMissingToken, "login response carried no token")
	}

	if err := s.storage.Save(ctx, res.Token); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = res.Token
	s.profile = nil
	s.mu.Unlock()

	s.logger.Info("logged in", "username", creds.Username, "token_fp", Fingerprint(res.Token))

	if _, err := s.FetchProfile(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// FetchProfile replaces the stored profile with a fresh one from the server.
func (s *Store) FetchProfile(ctx context.Context) (*UserProfile, error) {
	token := s.Token()
	if token == "" {
		return nil, errors.NewStateError(errors.ErrCodeNoSession, "cannot fetch profile without a token").
			WithSuggestion("Run 'poetryctl auth login' first")
	}

	auth, err := s.authenticator()
	if err != nil {
		return nil, err
	}

	profile, err := auth.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.NewDecodeError("user profile", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		return nil, errors.NewStateError(errors.ErrCodeSessionChanged, "session changed while fetching profile")
	}
	s.profile = profile.Clone()

	return profile.Clone(), nil
}

// Logout clears the session from memory and from durable storage. It has no
// network effect and is safe to call repeatedly.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	previous := s.token
	s.token = ""
	s.profile = nil
	s.mu.Unlock()

	if previous != "" {
		s.logger.Info("logged out", "token_fp", Fingerprint(previous))
	}
	return s.storage.Clear(ctx)
}

// SetToken replaces the token after a silent refresh. It does not fetch a
// profile. An empty token logs out.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Logout(ctx)
	}
	if err := s.storage.Save(ctx, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.Debug("token replaced", "token_fp", Fingerprint(token))
	return nil
}

func (s *Store) authenticator() (Authenticator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		return nil, errors.NewStateError(errors.ErrCodeNoAuthenticator, "session store has no authenticator bound")
	}
	return s.auth, nil
}
