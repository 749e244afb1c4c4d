package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL    string
	DBMaxOpenConns int
	AutoMigrate    bool

	RedisURL        string
	ShuffleCacheTTL time.Duration

	KafkaBrokers []string
	EventsTopic  string
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig reads .env when present, then config.yaml, then the environment.
// Later sources win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("shuffle_cache_ttl", "24h")
	v.SetDefault("events_topic", "assessment.events")
	v.SetDefault("auto_migrate", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"database_url", "redis_url", "kafka_brokers"} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	level, err := parseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:            v.GetString("port"),
		Environment:     strings.ToLower(v.GetString("environment")),
		LogLevel:        level,
		DatabaseURL:     v.GetString("database_url"),
		DBMaxOpenConns:  v.GetInt("db_max_open_conns"),
		AutoMigrate:     v.GetBool("auto_migrate"),
		RedisURL:        v.GetString("redis_url"),
		ShuffleCacheTTL: v.GetDuration("shuffle_cache_ttl"),
		KafkaBrokers:    splitBrokers(v.GetString("kafka_brokers")),
		EventsTopic:     v.GetString("events_topic"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.ShuffleCacheTTL < 0 {
		return nil, fmt.Errorf("invalid SHUFFLE_CACHE_TTL %s", cfg.ShuffleCacheTTL)
	}

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
