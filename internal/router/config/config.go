package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	PostgresUser  string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass  string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost  string `mapstructure:"POSTGRES_HOST"`
	PostgresPort  string `mapstructure:"POSTGRES_PORT"`
	PostgresDB    string `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL  string `mapstructure:"MIGRATION_URL"`

	StorageBackend string        `mapstructure:"STORAGE_BACKEND"`
	LockBackend    string        `mapstructure:"LOCK_BACKEND"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	LockTTL        time.Duration `mapstructure:"LOCK_TTL"`
	NatsURL        string        `mapstructure:"NATS_URL"`

	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RateLimitRPS       float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int           `mapstructure:"RATE_LIMIT_BURST"`
	PersistenceRetries int           `mapstructure:"PERSISTENCE_RETRIES"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":      "0.0.0.0:8080",
	"POSTGRES_CONN":       "",
	"POSTGRES_USERNAME":   "",
	"POSTGRES_PASSWORD":   "",
	"POSTGRES_HOST":       "",
	"POSTGRES_PORT":       "5432",
	"POSTGRES_DATABASE":   "",
	"MIGRATION_URL":       "file://db/migration",
	"STORAGE_BACKEND":     "postgres",
	"LOCK_BACKEND":        "local",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"LOCK_TTL":            "10s",
	"NATS_URL":            "",
	"REQUEST_TIMEOUT":     "5s",
	"RATE_LIMIT_RPS":      20.0,
	"RATE_LIMIT_BURST":    40,
	"PERSISTENCE_RETRIES": 3,
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
}

// LoadConfig загружает конфигурацию из файла app.env в каталоге path.
// Переменные окружения переопределяют значения из файла; файл необязателен.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate проверяет допустимые значения перечислимых параметров.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q, must be postgres or memory", c.StorageBackend)
	}
	switch c.LockBackend {
	case "local", "redis":
	default:
		return fmt.Errorf("invalid LOCK_BACKEND %q, must be local or redis", c.LockBackend)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.PersistenceRetries < 0 {
		return errors.New("PERSISTENCE_RETRIES must not be negative")
	}
	return nil
}
