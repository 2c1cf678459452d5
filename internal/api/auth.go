package api

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"scoring-api/internal/common/config"
)

// adminTimeLayout is the hour-granularity clock component of the admin
// digest.
const adminTimeLayout = "2006010215"

// Authenticator verifies the envelope token against the expected SHA-512
// digest. The clock is injectable so hour boundaries are testable.
type Authenticator struct {
	cfg config.AuthConfig
	now func() time.Time
}

func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	return NewAuthenticatorAt(cfg, time.Now)
}

func NewAuthenticatorAt(cfg config.AuthConfig, now func() time.Time) *Authenticator {
	return &Authenticator{cfg: cfg, now: now}
}

// Check reports whether the envelope token matches the expected digest.
// Admin tokens are derived from the UTC hour and the admin salt; user
// tokens from account, login and the shared salt. The comparison is
// constant-time and the expected digest never leaves this function.
func (a *Authenticator) Check(env *Envelope) bool {
	var message string
	if env.Admin {
		message = a.now().UTC().Format(adminTimeLayout) + a.cfg.AdminSalt
	} else {
		message = env.Account + env.Login + a.cfg.Salt
	}
	sum := sha512.Sum512([]byte(message))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(env.Token)) == 1
}

// AdminLogin exposes the reserved identity for envelope binding.
func (a *Authenticator) AdminLogin() string {
	return a.cfg.AdminLogin
}
