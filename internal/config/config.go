package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          int
	NatsURL       string
	NatsToken     string
	DatabaseURL   string
	LogLevel      string
	OpenAIAPIKey  string
	Model         string
	APIToken      string
	MaxMessageLen int
	MaxTurns      int
	ResultCount   int
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

func Load() Config {
	return Config{
		Port:          envInt("PALMARES_PORT", 8780),
		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:  envStr("OPENAI_API_KEY", ""),
		Model:         envStr("PALMARES_MODEL", "gpt-4o-mini"),
		APIToken:      envStr("PALMARES_API_TOKEN", ""),
		MaxMessageLen: envInt("PALMARES_MAX_MESSAGE_LEN", 280),
		MaxTurns:      envInt("PALMARES_MAX_TURNS", 6),
		ResultCount:   envInt("PALMARES_RESULT_COUNT", 3),
		SessionTTL:    envDuration("PALMARES_SESSION_TTL", 30*time.Minute),
		SweepInterval: envDuration("PALMARES_SWEEP_INTERVAL", time.Minute),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
