package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Services    ServicesConfig
	Kafka       KafkaConfig
	Workers     WorkersConfig
	Environment string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over
// the individual fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// RedisConfig holds key-value cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// AcquireTimeout bounds the connection liveness probe done before each
	// cache-aside read.
	AcquireTimeout time.Duration
}

// JWTConfig holds bearer-token verification configuration. Secret is the
// process-wide HS256 signing secret; its absence is fatal at startup.
type JWTConfig struct {
	Secret string
}

// ServicesConfig holds base URLs and pool sizes for the downstream
// microservices reached over RPC.
type ServicesConfig struct {
	TraderAddr     string
	MerchantAddr   string
	BankAddr       string
	ExchangeAddr   string
	RequisitesAddr string
	PaymentsAddr   string
	DeviceAddr     string

	// TraderPoolSize is larger than the rest: the trader service is the most
	// frequently called dependency.
	TraderPoolSize     int
	RequisitesPoolSize int
	DefaultPoolSize    int
}

// KafkaConfig holds the balance-event producer configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// WorkersConfig holds the background task runner sizing
type WorkersConfig struct {
	Count     int
	QueueSize int
}

// New creates a Config by loading environment variables, reading a .env file
// first when one is present.
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			ConnectionString: os.Getenv("DATABASE_URL"),
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             getEnvAsInt("DB_PORT", 5432),
			User:             getEnv("DB_USER", "postgres"),
			Password:         os.Getenv("DB_PASSWORD"),
			Database:         getEnv("DB_NAME", "payments"),
			SSLMode:          getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             getEnvAsInt("REDIS_DB", 0),
			AcquireTimeout: getEnvAsDuration("REDIS_ACQUIRE_TIMEOUT", 100*time.Millisecond),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		Services: ServicesConfig{
			TraderAddr:         getEnv("TRADER_SERVICE_ADDR", "http://localhost:50051"),
			MerchantAddr:       getEnv("MERCHANT_SERVICE_ADDR", "http://localhost:50052"),
			BankAddr:           getEnv("BANK_SERVICE_ADDR", "http://localhost:50053"),
			ExchangeAddr:       getEnv("EXCHANGE_SERVICE_ADDR", "http://localhost:50054"),
			RequisitesAddr:     getEnv("REQUISITES_SERVICE_ADDR", "http://localhost:50055"),
			PaymentsAddr:       getEnv("PAYMENTS_SERVICE_ADDR", "http://localhost:50056"),
			DeviceAddr:         getEnv("DEVICE_SERVICE_ADDR", "http://localhost:50057"),
			TraderPoolSize:     getEnvAsInt("TRADER_POOL_SIZE", 500),
			RequisitesPoolSize: getEnvAsInt("REQUISITES_POOL_SIZE", 100),
			DefaultPoolSize:    getEnvAsInt("DEFAULT_POOL_SIZE", 50),
		},
		Kafka: KafkaConfig{
			Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_BALANCE_TOPIC", "trader_change_balance"),
		},
		Workers: WorkersConfig{
			Count:     getEnvAsInt("WORKER_COUNT", 8),
			QueueSize: getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fatal-at-startup conditions
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Workers.Count <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", c.Workers.Count)
	}
	if c.Workers.QueueSize <= 0 {
		return fmt.Errorf("worker queue size must be positive, got %d", c.Workers.QueueSize)
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a connection description safe for logging (no password)
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		if u, err := url.Parse(c.ConnectionString); err == nil {
			u.User = url.User(u.User.Username())
			return u.Redacted()
		}
		return "DATABASE_URL"
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s", c.Host, c.Port, c.Database, c.User)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
