package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Cache   CacheConfig
	MCP     MCPConfig
	Log     LogConfig
	API     APIConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StorageConfig struct {
	Driver  string
	DataDir string
}

type CacheConfig struct {
	TTL string
}

type MCPConfig struct {
	Enabled bool
}

type LogConfig struct {
	Level string
}

type APIConfig struct {
	Token string
}

const defaultCacheTTL = 5 * time.Minute

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 4100,
		},
		Storage: StorageConfig{
			Driver:  "sqlite",
			DataDir: defaultDataDir(),
		},
		Cache: CacheConfig{
			TTL: defaultCacheTTL.String(),
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TTLDuration parses the cache TTL, falling back to five minutes when the
// value is not a valid duration.
func (c CacheConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		fmt.Fprintf(os.Stderr, "[WARN] invalid cache.ttl %q, using %s\n", c.TTL, defaultCacheTTL)
		return defaultCacheTTL
	}
	return d
}

// Load reads configuration in increasing precedence: defaults, the platform
// backend, a .env file in the working directory, then FINCOACH_* environment
// variables.
//
// On macOS the backend is UserDefaults (domain: com.fincoach.app).
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/fincoach/config.json.
//
// Secrets are never read from the backend. The API token comes from
// FINCOACH_API_TOKEN (environment or .env) or the platform keychain.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), NewKeychain(), ".env")
}

func loadWith(b ConfigBackend, kc Keychain, dotenvPath string) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg, envLookup(readDotenv(dotenvPath)))

	if cfg.API.Token == "" {
		if tok, err := kc.Get(keychainService, keychainTokenKey); err == nil && tok != "" {
			cfg.API.Token = tok
		}
	}

	return cfg, nil
}

// readDotenv parses path without touching the process environment. A
// missing file is not an error.
func readDotenv(path string) map[string]string {
	if path == "" {
		return nil
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "[WARN] could not read %s: %v. Ignoring it.\n", path, err)
		}
		return nil
	}
	return vals
}

// envLookup prefers the real environment over values from a .env file.
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
}
