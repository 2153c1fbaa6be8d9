package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"signalering/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string
	AdminToken string
}

// Database holds the signalering database and the case read model it scans.
type Database struct {
	URL         string
	IndexURL    string
	IndexDriver string
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Kafka struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Mail configures the SMTP relay. An empty SMTPAddr logs mails instead of sending.
type Mail struct {
	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
	From         string
	FromName     string
	ReplyTo      string
}

type Dispatch struct {
	Interval       time.Duration
	Workers        int
	RetentionDays  int
	Timezone       string
	ClaimTTL       time.Duration
	TargetCacheTTL time.Duration
}

type Config struct {
	Server   Server
	Database Database
	Redis    RedisConfig
	Kafka    Kafka
	Mail     Mail
	Dispatch Dispatch
	LogLevel string
}

// Location resolves the dispatch timezone that defines "today".
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Dispatch.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Dispatch.Timezone, err)
	}
	return loc, nil
}

// FromEnv builds the config from environment variables, reading an optional
// .env file first so local runs stay lean.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SIGNALERING_ADDR", ":8080")
	v.SetDefault("INDEX_DRIVER", "pgx")
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	v.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	v.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	v.SetDefault("KAFKA_TOPIC", "signalering.changes")
	v.SetDefault("KAFKA_CLIENT_ID", "signalering")
	v.SetDefault("MAIL_FROM", "noreply@localhost")
	v.SetDefault("MAIL_FROM_NAME", "Zaaksysteem")
	v.SetDefault("SIGNALERING_INTERVAL", time.Hour)
	v.SetDefault("SIGNALERING_WORKERS", 4)
	v.SetDefault("SIGNALERING_RETENTION_DAYS", 90)
	v.SetDefault("SIGNALERING_TIMEZONE", "Europe/Amsterdam")
	v.SetDefault("SIGNALERING_CLAIM_TTL", 15*time.Minute)
	v.SetDefault("TARGET_CACHE_TTL", 10*time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
	return v
}

func load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:       v.GetString("SIGNALERING_ADDR"),
			AdminToken: v.GetString("SIGNALERING_ADMIN_TOKEN"),
		},
		Database: Database{
			URL:         v.GetString("DATABASE_URL"),
			IndexURL:    v.GetString("INDEX_DATABASE_URL"),
			IndexDriver: v.GetString("INDEX_DRIVER"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("REDIS_URL"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
			DialTimeout:  v.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  v.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("REDIS_WRITE_TIMEOUT"),
		},
		Kafka: Kafka{
			Brokers:  strings.SplitList(v.GetString("KAFKA_BROKERS")),
			Topic:    v.GetString("KAFKA_TOPIC"),
			ClientID: v.GetString("KAFKA_CLIENT_ID"),
		},
		Mail: Mail{
			SMTPAddr:     v.GetString("SMTP_ADDR"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			From:         v.GetString("MAIL_FROM"),
			FromName:     v.GetString("MAIL_FROM_NAME"),
			ReplyTo:      v.GetString("MAIL_REPLY_TO"),
		},
		Dispatch: Dispatch{
			Interval:       v.GetDuration("SIGNALERING_INTERVAL"),
			Workers:        v.GetInt("SIGNALERING_WORKERS"),
			RetentionDays:  v.GetInt("SIGNALERING_RETENTION_DAYS"),
			Timezone:       v.GetString("SIGNALERING_TIMEZONE"),
			ClaimTTL:       v.GetDuration("SIGNALERING_CLAIM_TTL"),
			TargetCacheTTL: v.GetDuration("TARGET_CACHE_TTL"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
	if cfg.Database.IndexURL == "" {
		cfg.Database.IndexURL = cfg.Database.URL
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Dispatch.Interval <= 0 {
		return errors.New("SIGNALERING_INTERVAL must be positive")
	}
	if c.Dispatch.Workers <= 0 {
		return errors.New("SIGNALERING_WORKERS must be positive")
	}
	if c.Dispatch.RetentionDays < 0 {
		return errors.New("SIGNALERING_RETENTION_DAYS must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
