package session

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Credentials are the username/password pair sent to the login endpoint.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// Validate checks the credentials before any network call is made.
func (c Credentials) Validate() error {
	c.Username = strings.TrimSpace(c.Username)
	if err := validate.Struct(c); err != nil {
		return errors.NewValidationError("invalid credentials", err).
			WithSuggestion("Username must be 3-50 characters and password 6-100 characters")
	}
	return nil
}

// LoginResult is the payload returned by the login and refresh endpoints.
type LoginResult struct {
	Token     string `json:"token,omitempty"`
	TokenType string `json:"tokenType,omitempty"`
	// ExpiresIn is the token lifetime in milliseconds.
	ExpiresIn int64  `json:"expiresIn,omitempty"`
	UserID    int64  `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
}

// UnmarshalJSON accepts the token under either "token" or "accessToken".
func (r *LoginResult) UnmarshalJSON(data []byte) error {
	type plain LoginResult
	var raw struct {
		plain
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = LoginResult(raw.plain)
	if r.Token == "" {
		r.Token = raw.AccessToken
	}
	return nil
}

// UserProfile is the signed-in user's profile. Values handed out by the
// Store are copies; a profile is replaced wholesale, never patched.
type UserProfile struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Nickname    string   `json:"nickname"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	AvatarURL   string   `json:"avatar"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// UnmarshalJSON accepts "id" or "userId" and normalizes roles and
// permissions into sorted sets.
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	type plain UserProfile
	var raw struct {
		plain
		UserID *int64 `json:"userId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = UserProfile(raw.plain)
	if p.ID == 0 && raw.UserID != nil {
		p.ID = *raw.UserID
	}
	p.Roles = normalizeSet(p.Roles)
	p.Permissions = normalizeSet(p.Permissions)
	return nil
}

// HasRole reports whether the profile carries the role.
func (p *UserProfile) HasRole(role string) bool {
	_, found := slices.BinarySearch(p.Roles, role)
	return found
}

// HasPermission reports whether the profile carries the permission.
func (p *UserProfile) HasPermission(perm string) bool {
	_, found := slices.BinarySearch(p.Permissions, perm)
	return found
}

// DisplayName prefers the nickname.
func (p *UserProfile) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Username
}

// Clone returns a deep copy.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Roles = slices.Clone(p.Roles)
	c.Permissions = slices.Clone(p.Permissions)
	return &c
}

func normalizeSet(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
