package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment cannot
// leak in. Unset rather than blank, because godotenv never overrides a set variable.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "PORT", "MONGODB_URI", "mongourl", "MONGO_URL", "STORE_DRIVER",
		"STORAGE_DRIVER", "STORAGE_UPLOADDIR", "STORAGE_GCSBUCKET",
		"ADMIN_PASSWORD", "ADMIN_PASSWORDHASH", "ADMIN_PROTECTWRITES",
		"JWT_SECRET", "ENVIRONMENT", "LOGLEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ADMIN_PASSWORD", "open-sesame")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "./uploads", cfg.Storage.UploadDir)
	assert.Equal(t, int64(32), cfg.Storage.MaxUploadMB)
	assert.True(t, cfg.Admin.ProtectWrites)
	assert.Equal(t, 86400, cfg.JWT.ExpiresIn)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoad_PortAndMongoFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("mongourl", "mongodb://localhost:27017")
	t.Setenv("ADMIN_PROTECTWRITES", "false")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.False(t, cfg.Admin.ProtectWrites)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := `
store:
  driver: memory
storage:
  driver: gcs
  gcsbucket: showcase-assets
admin:
  protectwrites: false
loglevel: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "gcs", cfg.Storage.Driver)
	assert.Equal(t, "showcase-assets", cfg.Storage.GCSBucket)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	env := "STORE_DRIVER=memory\nADMIN_PASSWORD=from-dotenv\nJWT_SECRET=s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Admin.Password)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store:   StoreConfig{Driver: "memory"},
			Storage: StorageConfig{Driver: "local", UploadDir: "./uploads"},
			Admin:   AdminConfig{Password: "pw", ProtectWrites: true},
			JWT:     JWTConfig{Secret: "s"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"mongo without uri", func(c *Config) { c.Store.Driver = "mongo" }, false},
		{"unknown store", func(c *Config) { c.Store.Driver = "redis" }, false},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "s3" }, false},
		{"gcs without bucket", func(c *Config) { c.Storage.Driver = "gcs" }, false},
		{"protected without password", func(c *Config) { c.Admin.Password = "" }, false},
		{"protected with hash only", func(c *Config) { c.Admin.Password = ""; c.Admin.PasswordHash = "$2a$10$x" }, true},
		{"protected without secret", func(c *Config) { c.JWT.Secret = "" }, false},
		{"open writes need nothing", func(c *Config) { c.Admin = AdminConfig{}; c.JWT = JWTConfig{} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://fallback")
	t.Setenv("mongourl", "")
	assert.Equal(t, "mongodb://fallback", GetEnv("", "mongourl", "MONGO_URL"))
	assert.Equal(t, "none", GetEnv("none", "UNSET_SHOWCASE_VAR"))
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 5 * time.Minute},
		{"42", 42 * time.Second},
		{"90s", 90 * time.Second},
		{"2m", 2 * time.Minute},
		{"soon", 5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("IMPORT_TIMEOUT", tt.value)
			assert.Equal(t, tt.want, GetEnvAsDuration("IMPORT_TIMEOUT", 5*time.Minute))
		})
	}
}
