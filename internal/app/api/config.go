package api

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
	"gopkg.in/yaml.v3"

	rediscache "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/cache/redis"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/messaging/rabbitmq"
	platformpostgres "github.com/Apurer/fulfillment-api/internal/platform/postgres"
)

// StoreMemory keeps orders in process.
const StoreMemory = "memory"

// Config carries settings shared by the API, worker, notifier and migrate processes.
// Values come from an optional YAML file named by CONFIG_FILE; environment
// variables override the file.
type Config struct {
	Port              string        `yaml:"port"`
	StoreDriver       string        `yaml:"storeDriver"`
	PostgresDSN       string        `yaml:"postgresDsn"`
	SQLiteDSN         string        `yaml:"sqliteDsn"`
	RedisAddr         string        `yaml:"redisAddr"`
	RedisTTL          time.Duration `yaml:"redisTtl"`
	RabbitURL         string        `yaml:"rabbitUrl"`
	RabbitExchange    string        `yaml:"rabbitExchange"`
	TemporalAddress   string        `yaml:"temporalAddress"`
	TemporalNamespace string        `yaml:"temporalNamespace"`
	TemporalDisabled  bool          `yaml:"temporalDisabled"`
	JWTSecret         string        `yaml:"jwtSecret"`
	JWTIssuer         string        `yaml:"jwtIssuer"`
}

func defaultConfig() Config {
	return Config{
		Port:              "8080",
		RedisTTL:          rediscache.DefaultTTL,
		RabbitExchange:    rabbitmq.DefaultExchange,
		TemporalAddress:   client.DefaultHostPort,
		TemporalNamespace: client.DefaultNamespace,
		JWTIssuer:         "fulfillment-api",
	}
}

// LoadConfig reads the overlay file and environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envDefault("PORT", cfg.Port)
	cfg.StoreDriver = strings.ToLower(envDefault("STORE_DRIVER", cfg.StoreDriver))
	cfg.PostgresDSN = envDefault("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.SQLiteDSN = envDefault("SQLITE_DSN", cfg.SQLiteDSN)
	cfg.RedisAddr = envDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.RabbitURL = envDefault("RABBITMQ_URL", cfg.RabbitURL)
	cfg.RabbitExchange = envDefault("RABBITMQ_EXCHANGE", cfg.RabbitExchange)
	cfg.TemporalAddress = envDefault("TEMPORAL_ADDRESS", cfg.TemporalAddress)
	cfg.TemporalNamespace = envDefault("TEMPORAL_NAMESPACE", cfg.TemporalNamespace)
	if raw := strings.TrimSpace(os.Getenv("TEMPORAL_DISABLED")); raw != "" {
		cfg.TemporalDisabled = isTruthy(raw)
	}
	cfg.JWTSecret = envDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = envDefault("JWT_ISSUER", cfg.JWTIssuer)
	if raw := strings.TrimSpace(os.Getenv("REDIS_SNAPSHOT_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("REDIS_SNAPSHOT_TTL must be a duration: %w", err)
		}
		cfg.RedisTTL = ttl
	}

	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreMemory
		if cfg.PostgresDSN != "" {
			cfg.StoreDriver = platformpostgres.DriverPostgres
		}
	}
	switch cfg.StoreDriver {
	case StoreMemory, platformpostgres.DriverPostgres, platformpostgres.DriverSQLite:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be one of memory, postgres, sqlite: got %q", cfg.StoreDriver)
	}
	if cfg.RedisTTL <= 0 {
		return Config{}, fmt.Errorf("REDIS_SNAPSHOT_TTL must be positive")
	}
	return cfg, nil
}

// StoreDSN returns the DSN matching the selected store driver.
func (c Config) StoreDSN() string {
	if c.StoreDriver == platformpostgres.DriverSQLite {
		return c.SQLiteDSN
	}
	return c.PostgresDSN
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
