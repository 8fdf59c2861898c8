package config

import (
	"os"
	"strconv"
)

// DefaultProfilePicture is applied to accounts created without a picture.
const DefaultProfilePicture = "https://ik.imagekit.io/cafedejur/sari-sari-events/default-profile.jpg?updatedAt=1753685867575"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string

	GoogleClientID string

	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string
	DefaultFromEmail   string

	LogLevel  string
	LogFormat string

	OTPSendRate           float64
	DefaultProfilePicture string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		AppEnv:      getEnv("APP_ENV", "dev"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		SESRegion:          os.Getenv("AWS_SES_REGION_NAME"),
		SESAccessKeyID:     os.Getenv("AWS_SES_ACCESS_KEY_ID"),
		SESSecretAccessKey: os.Getenv("AWS_SES_SECRET_ACCESS_KEY"),
		DefaultFromEmail:   os.Getenv("DEFAULT_FROM_EMAIL"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		OTPSendRate:           getEnvFloat("OTP_SEND_RATE", 1),
		DefaultProfilePicture: getEnv("DEFAULT_PROFILE_PICTURE", DefaultProfilePicture),
	}
}

// MailConfigured reports whether every setting the SES sender needs is present.
func (c *Config) MailConfigured() bool {
	return c.SESRegion != "" && c.SESAccessKeyID != "" && c.SESSecretAccessKey != "" && c.DefaultFromEmail != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
