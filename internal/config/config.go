package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Storage drivers accepted by storage.driver.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds runtime configuration values for the portal service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               zerolog.Level
	StorageDriver          string
	SQLitePath             string
	DatabaseURL            string
	RedisURL               string
	SnapshotKey            string
	SessionKey             string
	NATSURL                string
	EventSubjectPrefix     string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "MI Koro Portal")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.driver", StorageSQLite)
	v.SetDefault("storage.sqlite_path", "mikoro.db")
	v.SetDefault("storage.snapshot_key", "mi-koro-db")
	v.SetDefault("storage.session_key", "mi-koro-session")
	v.SetDefault("events.subject_prefix", "mikoro")
	v.SetDefault("cloudinary.folder", "mikoro/students")

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log.level")))
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               level,
		StorageDriver:          strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		SQLitePath:             v.GetString("storage.sqlite_path"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		SnapshotKey:            v.GetString("storage.snapshot_key"),
		SessionKey:             v.GetString("storage.session_key"),
		NATSURL:                v.GetString("nats.url"),
		EventSubjectPrefix:     v.GetString("events.subject_prefix"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	switch cfg.StorageDriver {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis url must be provided for the redis storage driver")
		}
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url must be provided for the postgres storage driver")
		}
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.SnapshotKey == cfg.SessionKey {
		return Config{}, fmt.Errorf("snapshot and session keys must differ")
	}

	return cfg, nil
}
