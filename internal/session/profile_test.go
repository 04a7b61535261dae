package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"valid", Credentials{Username: "alice", Password: "secret-pass"}, false},
		{"padded username", Credentials{Username: "  alice  ", Password: "secret-pass"}, false},
		{"empty username", Credentials{Password: "secret-pass"}, true},
		{"short username", Credentials{Username: "al", Password: "secret-pass"}, true},
		{"blank username", Credentials{Username: "     ", Password: "secret-pass"}, true},
		{"short password", Credentials{Username: "alice", Password: "12345"}, true},
		{"empty password", Credentials{Username: "alice"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsKind(err, errors.KindValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoginResult_TokenAliases(t *testing.T) {
	var a LoginResult
	require.NoError(t, json.Unmarshal([]byte(`{"token":"T1","username":"alice"}`), &a))
	assert.Equal(t, "T1", a.Token)
	assert.Equal(t, "alice", a.Username)

	var b LoginResult
	require.NoError(t, json.Unmarshal([]byte(`{"accessToken":"T2","tokenType":"Bearer","expiresIn":86400000,"userId":7}`), &b))
	assert.Equal(t, "T2", b.Token)
	assert.Equal(t, "Bearer", b.TokenType)
	assert.Equal(t, int64(86400000), b.ExpiresIn)
	assert.Equal(t, int64(7), b.UserID)

	var c LoginResult
	require.NoError(t, json.Unmarshal([]byte(`{"token":"T1","accessToken":"T2"}`), &c))
	assert.Equal(t, "T1", c.Token, "token wins over accessToken")
}

func TestUserProfile_Unmarshal(t *testing.T) {
	var p UserProfile
	body := `{"userId":42,"username":"alice","nickname":"Alice","avatar":"https://cdn/a.png",
		"roles":["editor","admin","editor"," "],"permissions":["poetry:write","poetry:read"]}`
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "https://cdn/a.png", p.AvatarURL)
	assert.Equal(t, []string{"admin", "editor"}, p.Roles)
	assert.Equal(t, []string{"poetry:read", "poetry:write"}, p.Permissions)

	assert.True(t, p.HasRole("admin"))
	assert.False(t, p.HasRole("guest"))
	assert.True(t, p.HasPermission("poetry:write"))
	assert.False(t, p.HasPermission("user:delete"))
	assert.Equal(t, "Alice", p.DisplayName())
}

func TestUserProfile_IDWinsOverUserID(t *testing.T) {
	var p UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"userId":2}`), &p))
	assert.Equal(t, int64(1), p.ID)
	assert.Empty(t, p.Roles)
}

func TestUserProfile_DisplayNameFallsBack(t *testing.T) {
	p := &UserProfile{Username: "alice"}
	assert.Equal(t, "alice", p.DisplayName())
}

func TestUserProfile_Clone(t *testing.T) {
	var nilProfile *UserProfile
	assert.Nil(t, nilProfile.Clone())

	p := &UserProfile{ID: 1, Roles: []string{"admin"}, Permissions: []string{"a"}}
	c := p.Clone()
	c.Roles[0] = "x"
	c.Permissions[0] = "y"
	assert.Equal(t, "admin", p.Roles[0])
	assert.Equal(t, "a", p.Permissions[0])
}
