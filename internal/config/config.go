package config

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct {
	Env  string
	Port int

	// "postgres" or "memory"
	StoreDriver  string
	DBURL        string
	DBMaxConns   int32
	AutoMigrate  bool
	StoreTimeout time.Duration

	// 0 disables the feed's identity cache
	IdentityCacheTTL time.Duration

	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowedOrigins []string
	AuthRateLimit      int
	AuthRateWindow     time.Duration
	MaxBodyBytes       int64

	OTelEndpoint    string
	OTelSampleRatio float64
}

// Load reads the environment (and a .env file when present). It fails when the
// signing key is missing so no unverifiable tokens are ever issued.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := fromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadUnvalidated is for tools such as the migrator that never sign tokens.
func LoadUnvalidated() Config {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() Config {
	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DBURL:        getEnv("DATABASE_URL", buildDBURL()),
		DBMaxConns:   int32(getEnvInt("DB_MAX_CONNS", 5)),
		AutoMigrate:  getEnvBool("AUTO_MIGRATE", true),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 3*time.Second),

		IdentityCacheTTL: getEnvDuration("IDENTITY_CACHE_TTL", 30*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		AuthRateLimit:      getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:     getEnvDuration("AUTH_RATE_WINDOW", time.Minute),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}

	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return errors.New("STORE_DRIVER must be postgres or memory")
	}

	return nil
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "socialhub")
	pass := getEnv("DB_PASSWORD", "socialhub")
	name := getEnv("DB_NAME", "socialhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds a store call. The request context stays the parent so a
// disconnected client cancels the work too.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("invalid float for %s: %v, using default %v", key, err, fallback)
			return fallback
		}
		return f
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
