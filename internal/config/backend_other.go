//go:build !darwin

package config

import (
	"os"
	"path/filepath"
)

// xdgDir resolves an XDG base directory from env, falling back to homeRel
// under the user's home. ok is false when neither is available.
func xdgDir(env, homeRel string) (dir string, ok bool) {
	if dir := os.Getenv(env); dir != "" {
		return dir, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, homeRel), true
}

func defaultDataDir() string {
	if dir, ok := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")); ok {
		return filepath.Join(dir, "fincoach")
	}
	return "fincoach-data"
}

func newPlatformBackend() ConfigBackend {
	return newFileBackend(configFilePath())
}

func configFilePath() string {
	dir, ok := xdgDir("XDG_CONFIG_HOME", ".config")
	if !ok {
		dir = "."
	}
	return filepath.Join(dir, "fincoach", "config.json")
}
