package config

import (
	"log"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string // ENV: production, development, etc.

	MongoURI string
	RedisURI string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	TempDir        string   // staging area for multipart uploads
}

func Load() *Config {
	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	tempDir := getEnv("TEMP_DIR", "")
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
		MongoURI:            getEnv("MONGODB_URI", "mongodb://localhost:27017/vidtube"),
		RedisURI:            getEnv("REDIS_URI", ""),
		AccessTokenSecret:   getEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret:  getEnv("REFRESH_TOKEN_SECRET", ""),
		AccessTokenExpiry:   getDuration("ACCESS_TOKEN_EXPIRY", time.Hour),
		RefreshTokenExpiry:  getDuration("REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		AllowedOrigins:      allowedOrigins,
		TempDir:             tempDir,
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
