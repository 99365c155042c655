package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	keychainService  = "fincoach"
	keychainTokenKey = "api_token"
)

// Keychain is the platform secret store: macOS Keychain, or a 0600 JSON
// file under the XDG data directory elsewhere.
type Keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

type platformKeychain struct{}

// NewKeychain returns the platform secret store.
func NewKeychain() Keychain { return platformKeychain{} }

func (platformKeychain) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (platformKeychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

// EnsureAPIToken returns the bearer token for the HTTP API. A token from the
// environment or the keychain wins; otherwise a new random token is
// generated and stored in the keychain so clients can read it back.
func EnsureAPIToken(cfg *Config, kc Keychain) (string, error) {
	if cfg.API.Token != "" {
		return cfg.API.Token, nil
	}
	if tok, err := kc.Get(keychainService, keychainTokenKey); err == nil && tok != "" {
		cfg.API.Token = tok
		return tok, nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating API token: %w", err)
	}
	tok := hex.EncodeToString(buf)
	if err := kc.Set(keychainService, keychainTokenKey, tok); err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	cfg.API.Token = tok
	return tok, nil
}
