package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds every externally supplied setting. It is built once in main
// and passed by reference into the components that need it.
type Config struct {
	ServerPort string

	DatabaseDSN string

	JWTSecret        []byte
	AccessTokenTTL   time.Duration // minutes-granularity, from ACCESS_TOKEN_EXPIRE_MINUTES
	RefreshTokenTTL  time.Duration // days-granularity, from REFRESH_TOKEN_EXPIRE_DAYS
	ResetTokenTTL    time.Duration
	FrontendBaseURL  string // base for confirmation / reset links in outgoing mail
	TrustProxyHeader bool

	SMTPHost      string
	SMTPPort      int
	EmailSender   string
	EmailPassword string
}

// Load reads the configuration from the environment. The JWT secret is
// required in release mode; everything else falls back to a sane default.
func Load() *Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			log.Fatal("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}

	dbHost := envDefault("DB_HOST", "localhost")
	dbPort := envDefault("DB_PORT", "5432")
	dbUser := envDefault("DB_USER", "postgres")
	dbPassword := envDefault("DB_PASSWORD", "postgres")
	dbName := envDefault("DB_NAME", "postgres")
	dbSslMode := envDefault("DB_SSLMODE", "disable")

	return &Config{
		ServerPort: envDefault("PORT", "8080"),

		DatabaseDSN: "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode,

		JWTSecret:        []byte(secret),
		AccessTokenTTL:   time.Duration(envIntDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL:  time.Duration(envIntDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		ResetTokenTTL:    time.Duration(envIntDefault("RESET_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		FrontendBaseURL:  envDefault("FRONTEND_BASE_URL", "http://localhost:5173"),
		TrustProxyHeader: envDefault("TRUST_PROXY_HEADER", "true") == "true",

		SMTPHost:      envDefault("SMTP_HOST", "smtp.yandex.ru"),
		SMTPPort:      envIntDefault("SMTP_PORT", 465),
		EmailSender:   os.Getenv("EMAIL_SENDER"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
