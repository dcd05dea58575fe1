package ipc

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned by Handle when a mutating StpCtl command
// arrives without a valid bearer token while auth is enabled.
var ErrUnauthorized = errors.New("ipc: stpctl command requires a valid bearer token")

// StpCtlAuth verifies the HS256 bearer token an StpCtl client attaches
// to mutating commands.
type StpCtlAuth struct {
	secret []byte
}

// NewStpCtlAuth builds a verifier around a shared HMAC secret.
func NewStpCtlAuth(secret string) *StpCtlAuth {
	return &StpCtlAuth{secret: []byte(secret)}
}

// Verify parses and validates an HS256 token, rejecting anything
// missing, malformed, expired, or signed with a different secret.
func (a *StpCtlAuth) Verify(token string) error {
	if a == nil {
		return nil
	}
	if token == "" {
		return ErrUnauthorized
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return ErrUnauthorized
	}
	return nil
}
