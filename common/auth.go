package common

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no hub secret can be resolved from any source.
var ErrNoToken = errors.New("no hub secret key available")

// TokenProvider yields the hub secret key attached to every request.
// Implementations may return a fixed value, read a host-provided secret
// store, or mint short-lived keys through an OAuth flow.
type TokenProvider interface {
	Token() (string, error)
}

// StaticToken is a TokenProvider for an explicitly supplied secret.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	if t == "" {
		return "", ErrNoToken
	}
	return string(t), nil
}

// EnvToken resolves the secret from an environment variable, the usual way a
// host runtime exposes its secret store to the process.
type EnvToken struct {
	// Key is the variable name; defaults to HUB_SECRET_KEY when empty.
	Key string
}

func (t EnvToken) Token() (string, error) {
	key := t.Key
	if key == "" {
		key = "HUB_SECRET_KEY"
	}
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrNoToken, key)
	}
	return val, nil
}

// tokenSourceProvider adapts an oauth2.TokenSource for hosts that issue
// hub secrets through an OAuth flow.
type tokenSourceProvider struct {
	source oauth2.TokenSource
}

// NewTokenSourceProvider wraps an oauth2.TokenSource as a TokenProvider.
// Use oauth2.StaticTokenSource for a fixed key.
func NewTokenSourceProvider(source oauth2.TokenSource) TokenProvider {
	return &tokenSourceProvider{source: source}
}

func (p *tokenSourceProvider) Token() (string, error) {
	tok, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("token source: %w", err)
	}
	if tok == nil || tok.AccessToken == "" {
		return "", ErrNoToken
	}
	return tok.AccessToken, nil
}

// ResolveToken picks the first provider that yields a non-empty token.
// An explicit token always wins over a host secret store.
func ResolveToken(providers ...TokenProvider) (string, error) {
	for _, p := range providers {
		if p == nil {
			continue
		}
		if tok, err := p.Token(); err == nil && tok != "" {
			return tok, nil
		}
	}
	return "", ErrNoToken
}
