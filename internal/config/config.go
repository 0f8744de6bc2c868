package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/yt-analytics-go/internal/constants"
)

type Config struct {
	Server  ServerConfig
	YouTube YouTubeConfig
	Report  ReportConfig
	Webhook WebhookConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type YouTubeConfig struct {
	FallbackChannelID string
	DataEndpoint      string
	AnalyticsEndpoint string
	Timeout           time.Duration
}

type ReportConfig struct {
	MaxEntities       int
	LookbackDays      int
	FanoutConcurrency int
	Timezone          string
}

type WebhookConfig struct {
	VerifyToken string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		YouTube: YouTubeConfig{
			FallbackChannelID: strings.TrimSpace(getEnv("YT_CHANNEL_ID", "")),
			DataEndpoint:      getEnv("YOUTUBE_DATA_ENDPOINT", ""),
			AnalyticsEndpoint: getEnv("YOUTUBE_ANALYTICS_ENDPOINT", ""),
			Timeout:           time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", int(constants.APIConfig.UpstreamTimeout/time.Second))) * time.Second,
		},
		Report: ReportConfig{
			MaxEntities:       getEnvInt("REPORT_MAX_ENTITIES", constants.ReportConfig.MaxEntities),
			LookbackDays:      getEnvInt("REPORT_LOOKBACK_DAYS", constants.ReportConfig.DefaultLookbackDays),
			FanoutConcurrency: getEnvInt("REPORT_FANOUT_CONCURRENCY", constants.ReportConfig.FanoutConcurrency),
			Timezone:          getEnv("REPORT_TIMEZONE", "Local"),
		},
		Webhook: WebhookConfig{
			VerifyToken: getEnv("YOUTUBE_PUBSUB_VERIFY_TOKEN", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE %q is invalid", c.Server.GinMode)
	}
	if c.Report.MaxEntities <= 0 {
		return fmt.Errorf("REPORT_MAX_ENTITIES must be positive")
	}
	if c.Report.LookbackDays <= 0 {
		return fmt.Errorf("REPORT_LOOKBACK_DAYS must be positive")
	}
	if c.Report.FanoutConcurrency <= 0 {
		return fmt.Errorf("REPORT_FANOUT_CONCURRENCY must be positive")
	}
	if c.YouTube.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must be positive")
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE %q is invalid: %w", c.Report.Timezone, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
