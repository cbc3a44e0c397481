package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	MongoURI       string
	MongoDatabase  string
	RedisURI       string // empty disables the Redis rate limiter
	JWTSecret      string
	SessionTTL     time.Duration
	ResetTokenTTL  time.Duration
	SweepInterval  time.Duration
	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Environment    string   // ENV: production, development, etc.
	LogLevel       string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	MailHost     string
	MailPort     int
	MailUser     string
	MailPassword string
	MailFrom     string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	mailUser := getEnv("EMAIL_USER", "")

	return &Config{
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/pinvent")),
		MongoDatabase:       getEnv("MONGODB_DATABASE", ""),
		RedisURI:            getEnv("REDIS_URI", ""),
		JWTSecret:           getEnv("JWT_SECRET", defaultJWTSecret),
		SessionTTL:          getDuration("SESSION_TTL", 24*time.Hour),
		ResetTokenTTL:       getDuration("RESET_TOKEN_TTL", 30*time.Minute),
		SweepInterval:       getDuration("TOKEN_SWEEP_INTERVAL", time.Hour),
		Environment:         env,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Port:                getEnv("PORT", "5000"),
		FrontendURL:         strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		AllowedOrigins:      allowedOrigins,
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		MailHost:            getEnv("EMAIL_HOST", "smtp.gmail.com"),
		MailPort:            getInt("EMAIL_PORT", 587),
		MailUser:            mailUser,
		MailPassword:        getEnv("EMAIL_PASS", ""),
		MailFrom:            getEnv("EMAIL_FROM", mailUser),
	}
}

// Validate rejects configurations that must not reach production.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.ResetTokenTTL <= 0 {
		return errors.New("RESET_TOKEN_TTL must be positive")
	}
	return nil
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
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

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

// getDuration accepts Go durations ("45m") or plain seconds ("2700").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
