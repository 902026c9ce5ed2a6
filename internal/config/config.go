package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration for the flatchat backend service.
type Config struct {
	AppPort       int
	UsersFile     string
	MessagesFile  string
	UploadsDir    string
	UserImagesDir string
	PublicDir     string
	LogLevel      string

	AllowedOrigins []string

	// Rate limiting for the signup/login endpoints.
	AuthRateRequests int
	AuthRateWindow   time.Duration
	AuthRateBurst    int
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development. A .env file in the working directory is
// loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppPort:          getInt("FLATCHAT_PORT", 3000),
		UsersFile:        getString("FLATCHAT_USERS_FILE", "users.json"),
		MessagesFile:     getString("FLATCHAT_MESSAGES_FILE", "messages.json"),
		UploadsDir:       getString("FLATCHAT_UPLOADS_DIR", "uploads"),
		UserImagesDir:    getString("FLATCHAT_USER_IMAGES_DIR", "user_account_images"),
		PublicDir:        getString("FLATCHAT_PUBLIC_DIR", "public"),
		LogLevel:         getString("FLATCHAT_LOG_LEVEL", "info"),
		AllowedOrigins:   getList("FLATCHAT_ALLOWED_ORIGINS", []string{"*"}),
		AuthRateRequests: getInt("FLATCHAT_AUTH_RATE_REQUESTS", 20),
		AuthRateWindow:   getDuration("FLATCHAT_AUTH_RATE_WINDOW", time.Minute),
		AuthRateBurst:    getInt("FLATCHAT_AUTH_RATE_BURST", 5),
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
