package config

import (
	"crypto/rand"
	"errors"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

const (
	EnvPrefix = "TORNEO_"

	// PathEnvVar names an optional YAML file loaded before the environment.
	PathEnvVar = "TORNEO_CONFIG"

	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

type Config struct {
	Port      string   `koanf:"port"`
	CORSHosts []string `koanf:"cors_hosts"`

	// AppID namespaces the bet collection.
	AppID       string `koanf:"app_id"`
	StoreDriver string `koanf:"store_driver"`

	FirebaseProjectID       string `koanf:"firebase_project_id"`
	FirebaseCredentialsJSON string `koanf:"firebase_credentials_json"`

	// AdminPassword is the admin secret or its bcrypt hash.
	AdminPassword   string        `koanf:"admin_password"`
	SessionSecret   string        `koanf:"session_secret"`
	AdminSessionTTL time.Duration `koanf:"admin_session_ttl"`
	SecureCookies   bool          `koanf:"secure_cookies"`
	LoginRate       time.Duration `koanf:"login_rate"`
	LoginBurst      int           `koanf:"login_burst"`

	ShareURL string `koanf:"share_url"`
	TimeZone string `koanf:"time_zone"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

func defaultConfig() Config {
	return Config{
		Port:            "8080",
		CORSHosts:       []string{"http://localhost:8080"},
		AppID:           "default-app-id",
		StoreDriver:     DriverFirestore,
		AdminSessionTTL: 12 * time.Hour,
		SecureCookies:   true,
		LoginRate:       10 * time.Second,
		LoginBurst:      5,
		ShareURL:        "https://torneodefutbol.app",
		TimeZone:        "UTC",
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load layers struct defaults, the optional YAML file named by TORNEO_CONFIG
// and TORNEO_* environment variables, in that order. A .env file in the
// working directory is read into the environment first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not read .env file")
	}

	k := koanf.New(".")
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, xerrors.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(PathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, xerrors.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, xerrors.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, xerrors.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, xerrors.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// listKeys are read from the environment as comma separated lists.
var listKeys = map[string]bool{
	"cors_hosts": true,
}

// envValue maps TORNEO_ADMIN_PASSWORD to admin_password and splits list
// settings on commas.
func envValue(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if !listKeys[key] {
		return key, value
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// Validate checks required settings. The in-memory store gets a random
// session secret when none is configured; with Firestore the secret must be
// stable or visitors lose their identity, and with it their bets, on restart.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.AdminPassword == "" {
		return errors.New("admin_password is required")
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("firebase_project_id is required for the firestore store")
		}
	default:
		return xerrors.Errorf("unknown store_driver %q", c.StoreDriver)
	}
	if c.AdminSessionTTL <= 0 {
		return errors.New("admin_session_ttl must be positive")
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return errors.New("login_rate and login_burst must be positive")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return xerrors.Errorf("invalid time_zone: %w", err)
	}
	if c.SessionSecret == "" && c.StoreDriver == DriverFirestore {
		return errors.New("session_secret is required for the firestore store")
	}
	if c.SessionSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return xerrors.Errorf("generate session secret: %w", err)
		}
		c.SessionSecret = string(secret)
		log.Warn().Msg("No session_secret configured, sessions will not survive a restart")
	}
	return nil
}

// Location is the parsed TimeZone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
