package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// mockKeychain is a test double for the Keychain interface.
type mockKeychain struct {
	values map[string]string
	setErr error
}

func newMockKeychain() *mockKeychain {
	return &mockKeychain{values: make(map[string]string)}
}

func (m *mockKeychain) Get(service, account string) (string, error) {
	v, ok := m.values[service+"/"+account]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (m *mockKeychain) Set(service, account, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[service+"/"+account] = value
	return nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies all default values apply when nothing is configured.
func TestDefaults(t *testing.T) {
	clearEnv(t)
	b := newFileBackend(filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := loadWith(b, newMockKeychain(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 4100 {
		t.Errorf("Server = %+v, want 127.0.0.1:4100", cfg.Server)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
	if cfg.Cache.TTLDuration() != 5*time.Minute {
		t.Errorf("Cache.TTLDuration() = %v, want 5m", cfg.Cache.TTLDuration())
	}
	if !cfg.MCP.Enabled {
		t.Error("MCP.Enabled = false, want true")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.API.Token != "" {
		t.Errorf("API.Token = %q, want empty", cfg.API.Token)
	}
}

// TestFileBackend verifies values are read from the JSON config file.
func TestFileBackend(t *testing.T) {
	clearEnv(t)
	path := writeTempFile(t, "config.json", `{
  "server.port": 5000,
  "server.host": "0.0.0.0",
  "storage.driver": "memory",
  "storage.data_dir": "/tmp/fincoach-test",
  "cache.ttl": "30s",
  "mcp.enabled": "false",
  "log.level": "debug",
  "api.token": "ignored"
}`)

	cfg, err := loadWith(newFileBackend(path), newMockKeychain(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Storage.Driver != "memory" || cfg.Storage.DataDir != "/tmp/fincoach-test" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Cache.TTLDuration() != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", cfg.Cache.TTLDuration())
	}
	if cfg.MCP.Enabled {
		t.Error("MCP.Enabled = true, want false")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.API.Token != "" {
		t.Errorf("secret read from backend: %q", cfg.API.Token)
	}
}

// TestPrecedence verifies env > .env > file > defaults.
func TestPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeTempFile(t, "config.json", `{"server.port": 5000, "log.level": "warn", "storage.driver": "memory"}`)
	dotenv := writeTempFile(t, ".env", "FINCOACH_SERVER_PORT=6000\nFINCOACH_LOG_LEVEL=debug\nFINCOACH_API_TOKEN=dotenv-token\n")

	t.Setenv("FINCOACH_SERVER_PORT", "7000")

	cfg, err := loadWith(newFileBackend(path), newMockKeychain(), dotenv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 from env", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug from .env", cfg.Log.Level)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want memory from file", cfg.Storage.Driver)
	}
	if cfg.API.Token != "dotenv-token" {
		t.Errorf("API.Token = %q, want dotenv-token", cfg.API.Token)
	}
	if v := os.Getenv("FINCOACH_LOG_LEVEL"); v != "" {
		t.Errorf(".env leaked into the process environment: %q", v)
	}
}

// TestInvalidEnvIgnored verifies malformed values fall back to the previous layer.
func TestInvalidEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINCOACH_SERVER_PORT", "not-a-number")
	t.Setenv("FINCOACH_MCP_ENABLED", "maybe")

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "none.json")), newMockKeychain(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want default 4100", cfg.Server.Port)
	}
	if !cfg.MCP.Enabled {
		t.Error("MCP.Enabled = false, want default true")
	}
}

func TestInvalidTTLFallsBack(t *testing.T) {
	if got := (CacheConfig{TTL: "soon"}).TTLDuration(); got != defaultCacheTTL {
		t.Errorf("TTLDuration = %v, want %v", got, defaultCacheTTL)
	}
}

// TestKeychainFallback verifies the keychain is consulted when no token is in env.
func TestKeychainFallback(t *testing.T) {
	clearEnv(t)
	kc := newMockKeychain()
	kc.values["fincoach/api_token"] = "keychain-secret"

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "none.json")), kc, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Token != "keychain-secret" {
		t.Errorf("API.Token = %q, want keychain-secret", cfg.API.Token)
	}
}

func TestEnsureAPIToken(t *testing.T) {
	t.Run("existing token kept", func(t *testing.T) {
		cfg := Config{API: APIConfig{Token: "set"}}
		tok, err := EnsureAPIToken(&cfg, newMockKeychain())
		if err != nil || tok != "set" {
			t.Fatalf("EnsureAPIToken = %q, %v", tok, err)
		}
	})

	t.Run("generated and stored", func(t *testing.T) {
		kc := newMockKeychain()
		cfg := Config{}
		tok, err := EnsureAPIToken(&cfg, kc)
		if err != nil {
			t.Fatalf("EnsureAPIToken: %v", err)
		}
		if len(tok) != 64 {
			t.Errorf("token length = %d, want 64", len(tok))
		}
		if kc.values["fincoach/api_token"] != tok || cfg.API.Token != tok {
			t.Error("token not stored in keychain and config")
		}

		again, err := EnsureAPIToken(&Config{}, kc)
		if err != nil || again != tok {
			t.Errorf("second call = %q, %v; want stored token", again, err)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		kc := newMockKeychain()
		kc.setErr = errors.New("locked")
		if _, err := EnsureAPIToken(&Config{}, kc); err == nil {
			t.Fatal("expected error when keychain is locked")
		}
	})
}

func TestSetKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	b := newFileBackend(path)

	if err := setKeyWith(b, "server.port", "4200"); err != nil {
		t.Fatalf("set server.port: %v", err)
	}
	if err := setKeyWith(b, "storage.driver", "memory"); err != nil {
		t.Fatalf("set storage.driver: %v", err)
	}
	if err := setKeyWith(b, "mcp.enabled", "0"); err != nil {
		t.Fatalf("set mcp.enabled: %v", err)
	}

	reloaded := newFileBackend(path)
	if v, ok, _ := reloaded.GetInt("server.port"); !ok || v != 4200 {
		t.Errorf("server.port = %d (ok=%v), want 4200", v, ok)
	}
	if v, _, _ := reloaded.GetString("mcp.enabled"); v != "false" {
		t.Errorf("mcp.enabled = %q, want false", v)
	}

	tests := []struct {
		key, value, wantErr string
	}{
		{"server.port", "abc", "invalid integer"},
		{"mcp.enabled", "perhaps", "invalid bool"},
		{"api.token", "x", "cannot set secret"},
		{"nope", "x", "unknown config key"},
	}
	for _, tt := range tests {
		err := setKeyWith(b, tt.key, tt.value)
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("setKeyWith(%s) error = %v, want %q", tt.key, err, tt.wantErr)
		}
	}
}

func TestUnsetKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	b := newFileBackend(path)

	if err := setKeyWith(b, "server.port", "4200"); err != nil {
		t.Fatal(err)
	}
	if err := unsetKeyWith(b, "server.port"); err != nil {
		t.Fatalf("unsetKeyWith: %v", err)
	}

	cfg, err := loadWith(newFileBackend(path), newMockKeychain(), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want default 4100 after unset", cfg.Server.Port)
	}

	if err := unsetKeyWith(b, "api.token"); err == nil {
		t.Error("expected error unsetting a secret")
	}
}

func TestShowAllHidesSecrets(t *testing.T) {
	cfg := defaults()
	cfg.API.Token = "secret"
	for _, k := range ShowAll(cfg) {
		if k.Key == "api.token" || k.Value == "secret" {
			t.Errorf("secret exposed: %+v", k)
		}
	}
	if got, want := len(ShowAll(cfg)), len(ValidKeys()); got != want {
		t.Errorf("ShowAll returned %d keys, ValidKeys %d", got, want)
	}
}
