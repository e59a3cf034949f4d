package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	LogLevel    string

	JWTSecret            string
	JWTExpiresInSeconds  int64
	AuthReturnResetToken bool
	ResetTokenTTL        time.Duration
	BcryptCost           int

	CORSAllowedOrigins []string

	AdminEmailSuffix string
	AccessPolicyFile string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPUseTLS   bool

	Cache CacheConfig

	AuditS3Bucket string
	AWSRegion     string
}

// CacheConfig selects and configures the reading cache backend.
type CacheConfig struct {
	Driver        string // "memory" | "redis"
	TTL           time.Duration
	Prefix        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, is loaded first and never overrides
// variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := getEnv("PSQL_HOST", "localhost")
		port := getEnv("PSQL_PORT", "5432")
		user := getEnv("PSQL_USER", "postgres")
		password := getEnv("PSQL_PASSWORD", "postgres")
		dbName := getEnv("PSQL_DB_NAME", "horoscope")

		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   host + ":" + port,
			Path:   dbName,
		}
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
		databaseURL = u.String()
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: databaseURL,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		JWTSecret:            getEnv("JWT_SECRET", "dev"),
		JWTExpiresInSeconds:  int64(getEnvInt("JWT_EXPIRES_IN_SECONDS", 86400)),
		AuthReturnResetToken: getEnvBool("AUTH_RETURN_RESET_TOKEN", false),
		ResetTokenTTL:        getEnvDuration("RESET_TOKEN_TTL", time.Hour),
		BcryptCost:           getEnvInt("BCRYPT_COST", 12),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		AdminEmailSuffix: getEnv("ADMIN_EMAIL_SUFFIX", "@horoscope.app"),
		AccessPolicyFile: getEnv("ACCESS_POLICY_FILE", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@horoscope.app"),
		SMTPUseTLS:   getEnvBool("SMTP_USE_TLS", false),

		Cache: CacheConfig{
			Driver:        getEnv("CACHE_DRIVER", "memory"),
			TTL:           getEnvDuration("CACHE_TTL", 48*time.Hour),
			Prefix:        getEnv("CACHE_PREFIX", ""),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},

		AuditS3Bucket: getEnv("AUDIT_S3_BUCKET", ""),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
	}
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
