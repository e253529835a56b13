package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Trading  TradingConfig
	Alerts   AlertConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Server   ServerConfig
	Notify   NotifyConfig
	News     NewsConfig
}

// TradingConfig holds signal scoring thresholds and the ticker universe
type TradingConfig struct {
	Tickers               []string
	ConfidenceThreshold   float64
	RSIOverbought         float64
	RSIOversold           float64
	VIXFearThreshold      float64
	YieldHighThreshold    float64
	HoldingTimeoutMinutes int
}

// AlertConfig holds the monitor loop schedule
type AlertConfig struct {
	IntervalMinutes int
	HoursStart      int
	HoursEnd        int
	DaysStart       int
	DaysEnd         int
	OnlyNewSignals  bool
}

// StorageConfig selects and locates the persistence backends
type StorageConfig struct {
	// LedgerBackend is "file" or "postgres"
	LedgerBackend string
	LedgerFile    string
	StateFile     string
	PIDFile       string
	MigrationsDir string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis snapshot cache configuration
type RedisConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Password   string
	DB         int
	TTLSeconds int
}

// KafkaConfig holds the event producer configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// ServerConfig holds the HTTP status/metrics server configuration
type ServerConfig struct {
	Enabled bool
	Host    string
	Port    string
}

// NotifyConfig holds the outbound webhook configuration
type NotifyConfig struct {
	WebhookURL     string
	TimeoutSeconds int
}

// NewsConfig holds the news sentiment source configuration. An empty API
// key disables news fetching and sentiment stays neutral.
type NewsConfig struct {
	APIKey       string
	MaxHeadlines int
}

// Load reads configuration from the environment, after loading a local .env
// file if one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		Trading: TradingConfig{
			Tickers:               parseList(getEnv("TICKERS", "GC=F,SI=F,PL=F,PA=F,DX-Y.NYB")),
			ConfidenceThreshold:   getEnvFloat("CONFIDENCE_THRESHOLD", 0.7),
			RSIOverbought:         getEnvFloat("RSI_OVERBOUGHT", 70.0),
			RSIOversold:           getEnvFloat("RSI_OVERSOLD", 30.0),
			VIXFearThreshold:      getEnvFloat("VIX_FEAR_THRESHOLD", 20.0),
			YieldHighThreshold:    getEnvFloat("US_YIELD_HIGH_THRESHOLD", 4.0),
			HoldingTimeoutMinutes: getEnvInt("SIGNAL_HOLDING_TIMEOUT_MINUTES", 240),
		},
		Alerts: AlertConfig{
			IntervalMinutes: getEnvInt("ALERT_INTERVAL_MINUTES", 15),
			HoursStart:      getEnvInt("ALERT_HOURS_START", 9),
			HoursEnd:        getEnvInt("ALERT_HOURS_END", 17),
			DaysStart:       getEnvInt("ALERT_DAYS_START", 1),
			DaysEnd:         getEnvInt("ALERT_DAYS_END", 5),
			OnlyNewSignals:  getEnvBool("ALERT_ONLY_NEW_SIGNALS", true),
		},
		Storage: StorageConfig{
			LedgerBackend: getEnv("LEDGER_BACKEND", "file"),
			LedgerFile:    getEnv("LEDGER_FILE", "./data/signal_performance.json"),
			StateFile:     getEnv("STATE_FILE", "./data/monitor_state.json"),
			PIDFile:       getEnv("PID_FILE", "./data/monitor.pid"),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "./db/migrations"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "sentinel"),
			Password: getEnv("DB_PASSWORD", "sentinel"),
			DBName:   getEnv("DB_NAME", "market_sentinel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:    getEnvBool("REDIS_ENABLED", false),
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnv("REDIS_PORT", "6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         0,
			TTLSeconds: getEnvInt("REDIS_SNAPSHOT_TTL_SECONDS", 300),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: parseList(getEnv("KAFKA_BROKERS", "localhost:19092")),
			Topic:   getEnv("KAFKA_TOPIC", "trading.signals"),
		},
		Server: ServerConfig{
			Enabled: getEnvBool("SERVER_ENABLED", true),
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnv("SERVER_PORT", "8081"),
		},
		Notify: NotifyConfig{
			WebhookURL:     getEnv("DISCORD_WEBHOOK_URL", ""),
			TimeoutSeconds: getEnvInt("WEBHOOK_TIMEOUT_SECONDS", 10),
		},
		News: NewsConfig{
			APIKey:       getEnv("NEWS_DATA_API_KEY", ""),
			MaxHeadlines: getEnvInt("NEWS_MAX_HEADLINES", 10),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q (using %d)", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q (using %g)", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q (using %t)", key, value, defaultValue)
		return defaultValue
	}
	return b
}

// parseList splits a comma-separated value, trimming blanks
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
