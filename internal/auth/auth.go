package auth

import (
	"context"
	"errors"
)

// ErrCredentialMissing signals that no authenticated principal is available.
// Callers short-circuit the remote call and degrade silently.
var ErrCredentialMissing = errors.New("auth: no credential available")

// CredentialSource produces a bearer credential on demand. Implementations
// live outside this core (identity providers); Static covers the CLI and
// tests.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// Static is a CredentialSource backed by a fixed token. An empty token
// behaves as an absent credential.
type Static string

func (s Static) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrCredentialMissing
	}
	return string(s), nil
}
