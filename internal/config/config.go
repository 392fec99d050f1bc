package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	Provision      ProvisionConfig
	Kafka          KafkaConfig
	InternalSecret string

	// DefaultURL is embedded as the referer in orchestration-platform
	// payloads so the platform knows which catalog instance ordered.
	DefaultURL string
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string
}

type JWTConfig struct {
	SecretKey string
}

// ProvisionConfig controls the background provisioning worker pool.
type ProvisionConfig struct {
	Workers        int
	QueueSize      int
	AttemptTimeout int // seconds, per provision/retire attempt
}

// KafkaConfig configures the optional status-event publisher. Events are
// disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers string
	Topic   string
}

func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8007"),
			Mode: getEnv("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "catalog_user"),
			Password:      getEnv("DB_PASSWORD", "catalog_pass"),
			DBName:        getEnv("DB_NAME", "catalog_db"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "migrations"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", ""),
		},
		Provision: ProvisionConfig{
			Workers:        getEnvInt("PROVISION_WORKERS", 4),
			QueueSize:      getEnvInt("PROVISION_QUEUE_SIZE", 64),
			AttemptTimeout: getEnvInt("PROVISION_ATTEMPT_TIMEOUT", 300),
		},
		Kafka: KafkaConfig{
			Brokers: getEnv("KAFKA_BROKERS", ""),
			Topic:   getEnv("KAFKA_ORDER_EVENTS_TOPIC", "order-item-events"),
		},
		InternalSecret: getEnv("INTERNAL_SECRET", ""),
		DefaultURL:     getEnv("DEFAULT_URL", "http://localhost:8007"),
	}

	// Never log credentials or secrets here.
	log.Printf("[config] Provision Service loaded: port=%s db=%s/%s workers=%d",
		cfg.Server.Port, cfg.Database.Host, cfg.Database.DBName, cfg.Provision.Workers)

	return cfg
}

func (c *DatabaseConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
