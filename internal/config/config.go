package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"crewwatch/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrMissingBaseURL   = errors.New("CREWWATCH_API_BASE_URL is required")
	ErrInvalidInterval  = errors.New("poll interval must be positive")
	ErrInvalidTimeout   = errors.New("request timeout must be positive")
	ErrInvalidThreshold = errors.New("error threshold must be at least 1")
)

// Config holds everything the crewwatch process reads from the environment.
type Config struct {
	Environment string

	API      APIConfig
	Poller   PollerConfig
	Server   ServerConfig
	Journal  JournalConfig
	Alerts   AlertsConfig
	EventBus EventBusConfig
}

type APIConfig struct {
	BaseURL          string
	RequestTimeout   time.Duration
	Token            string
	JWTSecret        string
	ServiceID        string
	ConnectivityHost string
}

type PollerConfig struct {
	Interval       time.Duration
	ErrorThreshold int
}

type ServerConfig struct {
	Port string
}

type JournalConfig struct {
	DatabaseURL string
}

type AlertsConfig struct {
	CredentialsBase64 string
	CredentialsFile   string
	Tokens            []string
}

type EventBusConfig struct {
	ReplayLast bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("CREWWATCH_API_BASE_URL", "http://localhost:8080/api/realtime")
	v.SetDefault("CREWWATCH_POLL_INTERVAL", "5s")
	v.SetDefault("CREWWATCH_REQUEST_TIMEOUT", "8s")
	v.SetDefault("CREWWATCH_ERROR_THRESHOLD", 3)
	v.SetDefault("CREWWATCH_API_TOKEN", "")
	v.SetDefault("APP_JWT_SECRET", "")
	v.SetDefault("CREWWATCH_SERVICE_ID", "crewwatch")
	v.SetDefault("CREWWATCH_CONNECTIVITY_PROBE", "")
	v.SetDefault("CREWWATCH_REPLAY_LAST", false)
	v.SetDefault("PORT", "8090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("FIREBASE_CREDENTIALS_BASE64", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("CREWWATCH_ALERT_TOKENS", "")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn("⚠️  .env file not found, using environment variables from system")
	} else {
		logger.Info("✅ .env file loaded successfully")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already-populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		API: APIConfig{
			BaseURL:          strings.TrimRight(v.GetString("CREWWATCH_API_BASE_URL"), "/"),
			RequestTimeout:   v.GetDuration("CREWWATCH_REQUEST_TIMEOUT"),
			Token:            v.GetString("CREWWATCH_API_TOKEN"),
			JWTSecret:        v.GetString("APP_JWT_SECRET"),
			ServiceID:        v.GetString("CREWWATCH_SERVICE_ID"),
			ConnectivityHost: v.GetString("CREWWATCH_CONNECTIVITY_PROBE"),
		},
		Poller: PollerConfig{
			Interval:       v.GetDuration("CREWWATCH_POLL_INTERVAL"),
			ErrorThreshold: v.GetInt("CREWWATCH_ERROR_THRESHOLD"),
		},
		Server: ServerConfig{
			Port: v.GetString("PORT"),
		},
		Journal: JournalConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
		},
		Alerts: AlertsConfig{
			CredentialsBase64: v.GetString("FIREBASE_CREDENTIALS_BASE64"),
			CredentialsFile:   v.GetString("FIREBASE_CREDENTIALS_FILE"),
			Tokens:            splitList(v.GetString("CREWWATCH_ALERT_TOKENS")),
		},
		EventBus: EventBusConfig{
			ReplayLast: v.GetBool("CREWWATCH_REPLAY_LAST"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Debug("📍 configuration loaded",
		zap.String("base_url", cfg.API.BaseURL),
		zap.Duration("poll_interval", cfg.Poller.Interval),
		zap.Duration("request_timeout", cfg.API.RequestTimeout),
		zap.Int("error_threshold", cfg.Poller.ErrorThreshold),
		zap.Bool("journal_enabled", cfg.Journal.DatabaseURL != ""),
		zap.Int("alert_tokens", len(cfg.Alerts.Tokens)),
	)

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Poller.Interval <= 0 {
		return ErrInvalidInterval
	}
	if c.API.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Poller.ErrorThreshold < 1 {
		return ErrInvalidThreshold
	}
	return nil
}

// ListenAddr returns the control API listen address.
func (s ServerConfig) ListenAddr() string {
	return ":" + s.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
