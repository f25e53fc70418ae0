package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values. Secrets have
// no in-code defaults and must come from the environment or a .env file.
type AppConfig struct {
	Port           string
	GinMode        string
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	JWTTTL         time.Duration
	CloudinaryURL  string
	AllowedOrigins []string

	RateLimitPerMinute int

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load reads configuration from the environment, loading a .env file
// first when one is present. It should be called once during boot.
func Load() *AppConfig {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:            getEnv("MONGODB_DATABASE", "weblog"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTTTL:             time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		CloudinaryURL:      os.Getenv("CLOUDINARY_URL"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPath:            os.Getenv("LOG_PATH"),
		LogMaxSizeMB:       getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays:      getEnvInt("LOG_MAX_AGE_DAYS", 7),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	return cfg
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

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
