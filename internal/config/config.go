package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Store       StoreConfig
	Storage     StorageConfig
	Admin       AdminConfig
	JWT         JWTConfig
	Environment string
	LogLevel    string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
	// Timeout bounds connect and ping, in seconds
	Timeout int
}

// StoreConfig selects the event store implementation ("mongo" or "memory")
type StoreConfig struct {
	Driver string
}

// StorageConfig holds upload storage configuration
type StorageConfig struct {
	Driver      string // "local" or "gcs"
	UploadDir   string
	GCSBucket   string
	MaxUploadMB int64
}

// AdminConfig holds the shared-secret admin gate configuration
type AdminConfig struct {
	Password      string
	PasswordHash  string
	ProtectWrites bool
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// Load loads configuration from a .env file, environment variables and an
// optional config.yaml found in path or path/config.
func Load(path string) (*Config, error) {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load(path + "/.env")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(path + "/config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Older deployments expose the connection string as "mongourl"
	if cfg.MongoDB.URI == "" {
		cfg.MongoDB.URI = GetEnv("", "mongourl", "MONGO_URL")
	}
	if port := GetEnv("", "PORT"); port != "" && v.GetString("Server.Port") == defaultPort {
		cfg.Server.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const defaultPort = "4000"

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", defaultPort)
	v.SetDefault("Server.AllowedOrigins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("MongoDB.URI", "")
	v.SetDefault("MongoDB.Database", "events")
	v.SetDefault("MongoDB.Timeout", 10)
	v.SetDefault("Store.Driver", "mongo")
	v.SetDefault("Storage.Driver", "local")
	v.SetDefault("Storage.UploadDir", "./uploads")
	v.SetDefault("Storage.GCSBucket", "")
	v.SetDefault("Storage.MaxUploadMB", 32)
	v.SetDefault("Admin.Password", "")
	v.SetDefault("Admin.PasswordHash", "")
	v.SetDefault("Admin.ProtectWrites", true)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	v.SetDefault("Environment", "development")
	v.SetDefault("LogLevel", "info")
}

// Validate checks combinations of settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "mongo":
		if c.MongoDB.URI == "" {
			return errors.New("config: MongoDB.URI is required for the mongo store")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	switch c.Storage.Driver {
	case "local":
		if c.Storage.UploadDir == "" {
			return errors.New("config: Storage.UploadDir is required for local storage")
		}
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return errors.New("config: Storage.GCSBucket is required for gcs storage")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	if c.Admin.ProtectWrites {
		if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
			return errors.New("config: Admin.Password or Admin.PasswordHash is required when writes are protected")
		}
		if c.JWT.Secret == "" {
			return errors.New("config: JWT.Secret is required when writes are protected")
		}
	}
	return nil
}
