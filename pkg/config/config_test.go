package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("TORNEO_ADMIN_PASSWORD", "secreto")
	t.Setenv("TORNEO_STORE_DRIVER", "memory")
	t.Setenv("TORNEO_ADMIN_SESSION_TTL", "30m")
	t.Setenv("TORNEO_CORS_HOSTS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "secreto", cfg.AdminPassword)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.AdminSessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSHosts)
	assert.NotEmpty(t, cfg.SessionSecret, "A missing session secret is generated")
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torneo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: \"9090\"\nstore_driver: memory\nadmin_password: desde-archivo\ntime_zone: America/Argentina/Buenos_Aires\n",
	), 0o600))
	t.Setenv(PathEnvVar, path)
	t.Setenv("TORNEO_ADMIN_PASSWORD", "desde-entorno")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "desde-entorno", cfg.AdminPassword, "Environment wins over the file")
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Location().String())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := defaultConfig()
		c.AdminPassword = "x"
		c.StoreDriver = DriverMemory
		return c
	}

	cases := map[string]func(c *Config){
		"missing password":     func(c *Config) { c.AdminPassword = "" },
		"unknown driver":       func(c *Config) { c.StoreDriver = "redis" },
		"firestore no project": func(c *Config) { c.StoreDriver = DriverFirestore },
		"bad time zone":        func(c *Config) { c.TimeZone = "Mars/Olympus" },
		"zero ttl":             func(c *Config) { c.AdminSessionTTL = 0 },
		"zero burst":           func(c *Config) { c.LoginBurst = 0 },
		"firestore no secret":  func(c *Config) { c.StoreDriver = DriverFirestore; c.FirebaseProjectID = "p" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := valid()
	c.SessionSecret = "fixed"
	require.NoError(t, c.Validate())
	assert.Equal(t, "fixed", c.SessionSecret)

	c = valid()
	c.StoreDriver = DriverFirestore
	c.FirebaseProjectID = "p"
	c.SessionSecret = "fixed"
	assert.NoError(t, c.Validate())
}

func TestEnvValueSplitsLists(t *testing.T) {
	key, value := envValue("TORNEO_CORS_HOSTS", "https://a.example, https://b.example,")
	assert.Equal(t, "cors_hosts", key)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, value)

	key, value = envValue("TORNEO_ADMIN_PASSWORD", "a,b")
	assert.Equal(t, "admin_password", key)
	assert.Equal(t, "a,b", value)
}
