// Package config loads application configuration from a config file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds application configuration values.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	LogMode        string `mapstructure:"LOG_MODE"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// ModeratorUserIDs is a comma separated list seeded into the roles table at startup.
	ModeratorUserIDs string `mapstructure:"MODERATOR_USER_IDS"`
	AdminUserID      string `mapstructure:"ADMIN_USER_ID"`

	FlagMinReports        int  `mapstructure:"FLAG_MIN_REPORTS"`
	FlagDistinctReporters bool `mapstructure:"FLAG_DISTINCT_REPORTERS"`

	VoteMaxRetries           int           `mapstructure:"VOTE_MAX_RETRIES"`
	VoteRetryInitialInterval time.Duration `mapstructure:"VOTE_RETRY_INITIAL_INTERVAL"`
	VoteTimeout              time.Duration `mapstructure:"VOTE_TIMEOUT"`

	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`
}

// LoadConfig reads config.yml (optional) and overlays environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "community_board")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("MODERATOR_USER_IDS", "")
	v.SetDefault("ADMIN_USER_ID", "")
	v.SetDefault("FLAG_MIN_REPORTS", 1)
	v.SetDefault("FLAG_DISTINCT_REPORTERS", false)
	v.SetDefault("VOTE_MAX_RETRIES", 5)
	v.SetDefault("VOTE_RETRY_INITIAL_INTERVAL", 20*time.Millisecond)
	v.SetDefault("VOTE_TIMEOUT", 5*time.Second)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4318")
}

// Validate checks required values and production rules.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.FlagMinReports < 1 {
		return errors.New("FLAG_MIN_REPORTS must be at least 1")
	}
	if c.VoteMaxRetries < 0 {
		return errors.New("VOTE_MAX_RETRIES must not be negative")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be changed and at least 32 characters in production")
		}
	}
	if _, err := c.ModeratorIDs(); err != nil {
		return err
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// ModeratorIDs merges MODERATOR_USER_IDS and the legacy ADMIN_USER_ID.
func (c *Config) ModeratorIDs() ([]int, error) {
	seen := map[int]bool{}
	var ids []int
	parts := strings.Split(c.ModeratorUserIDs, ",")
	parts = append(parts, c.AdminUserID)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid moderator user id %q", p)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Origins splits ALLOWED_ORIGINS.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
