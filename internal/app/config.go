package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string
	TMDBAPIKey     string
	TMDBBaseURL    string
	TMDBCacheTTL   time.Duration
	TMDBRateLimit  float64
	RedisURL       string
	CacheTTL       time.Duration
	CacheDisabled  bool
	MaxPages       int
	SampleSize     int
	VocabRefresh   time.Duration
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
		TMDBAPIKey:     strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		TMDBBaseURL:    getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBCacheTTL:   time.Duration(getEnvInt("TMDB_CACHE_TTL_DAYS", 7)) * 24 * time.Hour,
		TMDBRateLimit:  getEnvFloat("TMDB_RATE_LIMIT_RPS", 4),
		RedisURL:       getEnv("REDIS_URL", ""),
		CacheTTL:       time.Duration(getEnvInt("RECOMMEND_CACHE_TTL_MINUTES", 30)) * time.Minute,
		CacheDisabled:  getEnvBool("RECOMMEND_CACHE_DISABLED", false),
		MaxPages:       getEnvInt("MAX_DISCOVER_PAGES", 5),
		SampleSize:     getEnvInt("SAMPLE_SIZE", 5),
		VocabRefresh:   time.Duration(getEnvInt("VOCAB_REFRESH_HOURS", 24)) * time.Hour,
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
