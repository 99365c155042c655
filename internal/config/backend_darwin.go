//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultsDomain = "com.fincoach.app"

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fincoach-data"
	}
	return filepath.Join(home, "Library", "Application Support", "fincoach")
}

func newPlatformBackend() ConfigBackend {
	return defaultsBackend(defaultsDomain)
}

// defaultsBackend keeps settings in UserDefaults through the defaults CLI.
// The value is the defaults domain.
type defaultsBackend string

func (d defaultsBackend) run(verb, key string, extra ...string) ([]byte, error) {
	args := append([]string{verb, string(d), key}, extra...)
	return exec.Command("defaults", args...).CombinedOutput()
}

func (d defaultsBackend) GetString(key string) (string, bool, error) {
	out, err := d.run("read", key)
	val := strings.TrimSpace(string(out))
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return val, true, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
		// defaults exits 1 for a missing key.
		return "", false, nil
	default:
		return "", false, fmt.Errorf("defaults read %s: %w: %s", key, err, val)
	}
}

func (d defaultsBackend) GetInt(key string) (int, bool, error) {
	val, ok, err := d.GetString(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := parseIntValue(key, val)
	return i, true, err
}

func (d defaultsBackend) SetString(key, val string) error {
	_, err := d.run("write", key, "-string", val)
	return err
}

func (d defaultsBackend) SetInt(key string, val int) error {
	_, err := d.run("write", key, "-int", strconv.Itoa(val))
	return err
}

func (d defaultsBackend) Delete(key string) error {
	_, err := d.run("delete", key)
	return err
}
