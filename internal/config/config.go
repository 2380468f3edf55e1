package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL          string
	APIKey          string
	AuthEmail       string
	AuthPassword    string
	RequestTimeout  time.Duration
	CacheRedisAddr  string
	CacheTTL        time.Duration
	PreferencesFile string
	Lang            string
	LogLevel        string

	Emulator EmulatorConfig
}

type EmulatorConfig struct {
	Port        string
	DBPath      string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIURL:          getEnv("API_URL", "http://localhost:8080"),
		APIKey:          getEnv("API_KEY", "local-dev-key"),
		AuthEmail:       getEnv("AUTH_EMAIL", ""),
		AuthPassword:    getEnv("AUTH_PASSWORD", ""),
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		CacheRedisAddr:  getEnv("CACHE_REDIS_ADDR", ""),
		CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		PreferencesFile: getEnv("PREFERENCES_FILE", ""),
		Lang:            getEnv("LANG_CODE", "en"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Emulator: EmulatorConfig{
			Port:        getEnv("PORT", "8080"),
			DBPath:      getEnv("DB_PATH", "./data/do-it-with-ease.db"),
			JWTSecret:   getEnv("JWT_SECRET", "change-this-secret"),
			TokenTTL:    time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
			CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
