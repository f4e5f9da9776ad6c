package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI           string
	MongoDatabase      string
	Port               string
	JWTSecret          string
	Env                string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	RateLimitBurst     int
	TrustedProxies     []string
	KafkaBrokers       []string
	DonationTopic      string
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Existing variables are not overridden.
func LoadDotEnv(path string) error {
	return godotenv.Load(path)
}

// Load builds the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:           firstEnv("MONGOURI", "CONNECTION_URL"),
		MongoDatabase:      getEnv("MONGO_DATABASE", "crowdfunddb"),
		Port:               getEnv("SERVER_PORT", getEnv("PORT", "8080")),
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET_KEY")),
		Env:                getEnv("APP_ENV", "development"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 50),
		TrustedProxies:     splitList(os.Getenv("TRUSTED_PROXIES")),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		DonationTopic:      getEnv("DONATION_EVENTS_TOPIC", "donation-events"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGOURI environment variable not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable not set")
	}
	return cfg, nil
}

func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := strings.TrimSpace(os.Getenv(k)); val != "" {
			return val
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
