package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"weather-acquisition-go/pkg/logger"
)

const (
	BackendStore  = "store"
	BackendRemote = "remote"
)

type Config struct {
	HTTPPort       string
	Env            string
	Backend        string
	CollectionName string
	MetricsEnabled bool
	CORSOrigins    []string
	DB             DBConfig
	Store          StoreConfig
	Remote         RemoteConfig
}

type DBConfig struct {
	Driver          string
	Path            string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
	Silent          bool
}

type StoreConfig struct {
	TrackingTTL time.Duration
}

type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		Backend:        strings.ToLower(getEnv("REPOSITORY_BACKEND", BackendStore)),
		CollectionName: getEnv("COLLECTION_NAME", "datasources"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		CORSOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Path:            getEnv("DB_PATH", "weather.db"),
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "weather_acquisition"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			MigrationsDir:   getEnv("DB_MIGRATIONS_DIR", ""),
			Silent:          getEnvBool("DB_SILENT", false),
		},
		Store: StoreConfig{
			TrackingTTL: getEnvDuration("STORE_TRACKING_TTL", 30*time.Second),
		},
		Remote: RemoteConfig{
			BaseURL: getEnv("REMOTE_BASE_URL", ""),
			Timeout: getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendStore:
		return nil
	case BackendRemote:
		if strings.TrimSpace(c.Remote.BaseURL) == "" {
			return fmt.Errorf("REMOTE_BASE_URL is required when REPOSITORY_BACKEND=%s", BackendRemote)
		}
		return nil
	default:
		return fmt.Errorf("unsupported REPOSITORY_BACKEND %q", c.Backend)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
