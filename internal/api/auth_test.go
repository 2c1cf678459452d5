package api

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scoring-api/internal/common/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Salt:       "secret-salt",
		AdminSalt:  "admin-salt",
		AdminLogin: "admin",
	}
}

func sha512hex(message string) string {
	sum := sha512.Sum512([]byte(message))
	return hex.EncodeToString(sum[:])
}

func TestAuthenticator_UserToken(t *testing.T) {
	cfg := testAuthConfig()
	auth := NewAuthenticator(cfg)

	env := &Envelope{
		Account: "horns&hoofs",
		Login:   "h&f",
		Token:   sha512hex("horns&hoofs" + "h&f" + cfg.Salt),
	}
	assert.True(t, auth.Check(env))

	env.Token = sha512hex("horns&hoofs" + "h&f" + "wrong-salt")
	assert.False(t, auth.Check(env))

	env.Token = ""
	assert.False(t, auth.Check(env))

	env.Token = "not-a-digest"
	assert.False(t, auth.Check(env))
}

func TestAuthenticator_AdminTokenUsesHourClock(t *testing.T) {
	cfg := testAuthConfig()
	fixed := time.Date(2026, 8, 29, 14, 37, 0, 0, time.UTC)
	auth := NewAuthenticatorAt(cfg, func() time.Time { return fixed })

	env := &Envelope{
		Login: "admin",
		Admin: true,
		Token: sha512hex("2026082914" + cfg.AdminSalt),
	}
	assert.True(t, auth.Check(env))

	// The previous hour's digest no longer authenticates.
	env.Token = sha512hex("2026082913" + cfg.AdminSalt)
	assert.False(t, auth.Check(env))

	// Minutes are below digest granularity.
	later := time.Date(2026, 8, 29, 14, 59, 59, 0, time.UTC)
	auth = NewAuthenticatorAt(cfg, func() time.Time { return later })
	env.Token = sha512hex("2026082914" + cfg.AdminSalt)
	assert.True(t, auth.Check(env))
}

func TestAuthenticator_AdminIgnoresAccountSalt(t *testing.T) {
	cfg := testAuthConfig()
	fixed := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
	auth := NewAuthenticatorAt(cfg, func() time.Time { return fixed })

	env := &Envelope{
		Account: "acct",
		Login:   "admin",
		Admin:   true,
		Token:   sha512hex("acct" + "admin" + cfg.Salt),
	}
	assert.False(t, auth.Check(env), "user-style digest must not authenticate the admin")
}

func TestBindEnvelope(t *testing.T) {
	valid := map[string]interface{}{
		"account":   "horns&hoofs",
		"login":     "h&f",
		"token":     "abc",
		"method":    "online_score",
		"arguments": map[string]interface{}{},
	}

	env, bound := BindEnvelope(valid, "admin")
	assert.True(t, bound.Valid())
	assert.NotNil(t, env)
	assert.Equal(t, "online_score", env.Method)
	assert.False(t, env.Admin)

	admin := map[string]interface{}{
		"login":     "admin",
		"token":     "abc",
		"method":    "online_score",
		"arguments": map[string]interface{}{},
	}
	env, _ = BindEnvelope(admin, "admin")
	assert.NotNil(t, env)
	assert.True(t, env.Admin)
	assert.Empty(t, env.Account)
}

func TestBindEnvelope_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]interface{}
		wantField string
	}{
		{name: "empty body", body: map[string]interface{}{}, wantField: "login"},
		{name: "missing method", body: map[string]interface{}{
			"login": "h&f", "token": "abc", "arguments": map[string]interface{}{},
		}, wantField: "method"},
		{name: "empty method", body: map[string]interface{}{
			"login": "h&f", "token": "abc", "method": "", "arguments": map[string]interface{}{},
		}, wantField: "method"},
		{name: "arguments is not an object", body: map[string]interface{}{
			"login": "h&f", "token": "abc", "method": "online_score", "arguments": "{}",
		}, wantField: "arguments"},
		{name: "numeric login", body: map[string]interface{}{
			"login": 1.0, "token": "abc", "method": "online_score", "arguments": map[string]interface{}{},
		}, wantField: "login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, bound := BindEnvelope(tt.body, "admin")
			assert.Nil(t, env)
			assert.False(t, bound.Valid())
			assert.Contains(t, bound.Errors(), tt.wantField, fmt.Sprintf("errors: %v", bound.Errors()))
		})
	}
}
