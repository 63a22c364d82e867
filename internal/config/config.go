package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration, loaded from the environment.
type Config struct {
	APIBaseURL string
	WSURL      string
	StateDir   string

	HistoryPageSize      int
	RequestTimeout       time.Duration
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int

	DebugAddr    string
	OTLPEndpoint string
	Environment  string
	Verbose      bool
}

// Load reads configuration from the environment, consulting a .env file
// when present. Missing values fall back to localhost defaults matching
// the backend's dev setup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	stateDir := getEnv("CHAT_STATE_DIR", "")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}
		stateDir = filepath.Join(home, ".chat-client")
	}

	cfg := &Config{
		APIBaseURL:           getEnv("CHAT_API_URL", "http://localhost:8080/api"),
		WSURL:                getEnv("CHAT_WS_URL", "ws://localhost:8080/ws/chat"),
		StateDir:             stateDir,
		HistoryPageSize:      getEnvInt("CHAT_HISTORY_PAGE_SIZE", 50),
		RequestTimeout:       getEnvDuration("CHAT_REQUEST_TIMEOUT", 10*time.Second),
		ReconnectDelay:       getEnvDuration("CHAT_RECONNECT_DELAY", 3*time.Second),
		MaxReconnectAttempts: getEnvInt("CHAT_MAX_RECONNECT_ATTEMPTS", 5),
		DebugAddr:            getEnv("CHAT_DEBUG_ADDR", ""),
		OTLPEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Environment:          getEnv("CHAT_ENV", "dev"),
		Verbose:              getEnvBool("CHAT_VERBOSE", false),
	}

	if cfg.HistoryPageSize <= 0 {
		return nil, fmt.Errorf("history page size must be positive, got %d", cfg.HistoryPageSize)
	}
	if cfg.MaxReconnectAttempts < 0 {
		return nil, fmt.Errorf("max reconnect attempts must not be negative, got %d", cfg.MaxReconnectAttempts)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
