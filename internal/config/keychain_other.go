//go:build !darwin

package config

import (
	"fmt"
	"path/filepath"
)

// Without a system keychain, secrets live in a private JSON file under the
// XDG data directory, keyed "service/account".

func secretsFilePath() string {
	dir, ok := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if !ok {
		dir = "."
	}
	return filepath.Join(dir, "fincoach", "secrets.json")
}

func secretKey(service, account string) string {
	return service + "/" + account
}

func keychainGet(service, account string) ([]byte, error) {
	val, ok, err := newFileBackend(secretsFilePath()).GetString(secretKey(service, account))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no secret stored for %s", secretKey(service, account))
	}
	return []byte(val), nil
}

func keychainSet(service, account, value string) error {
	if err := newFileBackend(secretsFilePath()).SetString(secretKey(service, account), value); err != nil {
		return fmt.Errorf("storing secret %s: %w", secretKey(service, account), err)
	}
	return nil
}
