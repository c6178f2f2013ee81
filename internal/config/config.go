package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr       string
	ObsHTTPAddr    string
	MongoURI       string
	MongoDatabase  string
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	AdminEmail     string
	AdminPassword  string
	GoogleAudience string
	ServiceName    string
	StoreTimeout   time.Duration
	RateLimit      int
	RateLimitWin   string
}

func Load() *Config {
	return &Config{
		HTTPAddr:       fixPort(getEnv("HTTP_ADDR", ":8080")),
		ObsHTTPAddr:    fixPort(getEnv("OBS_HTTP_ADDR", ":9090")),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "helpmesh"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_key"),
		JWTIssuer:      getEnv("JWT_ISSUER", "helpmesh"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "adminpass123"),
		GoogleAudience: getEnv("GOOGLE_AUDIENCE", ""),
		ServiceName:    getEnv("SERVICE_NAME", "helpmesh-server"),
		StoreTimeout:   getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		RateLimit:      getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWin:   getEnv("RATE_LIMIT_WINDOW", "1m"),
	}
}

func fixPort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
