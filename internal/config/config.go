package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type Config struct {
	Server struct {
		Port         string
		Transport    string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	OpenWeather struct {
		APIKey  string
		BaseURL string
		Timeout time.Duration
	}

	Snapshot struct {
		Cities          []string
		RefreshInterval time.Duration
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}
}

// LoadConfig reads configuration from the environment (and an optional .env
// file). A missing OPENWEATHER_API_KEY is a load error: the process must not
// start without a provider credential.
func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("PORT", "8080")
	cfg.Server.Transport = getEnv("MCP_TRANSPORT", TransportStdio)
	cfg.Server.ReadTimeout = parseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("HTTP_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	if cfg.Server.Transport != TransportStdio && cfg.Server.Transport != TransportHTTP {
		return nil, fmt.Errorf("invalid MCP_TRANSPORT %q: must be %q or %q",
			cfg.Server.Transport, TransportStdio, TransportHTTP)
	}

	// Provider configuration
	cfg.OpenWeather.APIKey = getEnv("OPENWEATHER_API_KEY", "")
	cfg.OpenWeather.BaseURL = getEnv("OPENWEATHER_BASE_URL", "")
	cfg.OpenWeather.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", "10s"))

	if cfg.OpenWeather.APIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY environment variable is required")
	}

	// Snapshot resources
	cities := getEnv("SNAPSHOT_CITIES", "London")
	for _, city := range strings.Split(cities, ",") {
		if city = strings.TrimSpace(city); city != "" {
			cfg.Snapshot.Cities = append(cfg.Snapshot.Cities, city)
		}
	}
	cfg.Snapshot.RefreshInterval = parseDuration(getEnv("SNAPSHOT_REFRESH_INTERVAL", "15m"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}
