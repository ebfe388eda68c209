package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "changeme-secret"

type Config struct {
	Env      string
	HTTPPort string

	MongoURI      string
	MongoDatabase string

	JWTSecret    string
	JWTTTL       time.Duration
	CookieSecure bool

	CORSOrigins []string
	RateRPS     int

	Redis RedisConfig

	AuditDatabaseURL string
	Migrate          bool

	Cloudinary     CloudinaryConfig
	UploadMaxBytes int64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Load reads .env (when present) and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:      get("APP_ENV", "dev"),
		HTTPPort: get("HTTP_PORT", get("PORT", "3000")),

		MongoURI:      get("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: get("MONGODB_DATABASE", "moviecatalog"),

		JWTSecret:    get("JWT_SECRET", defaultJWTSecret),
		JWTTTL:       getDuration("JWT_TTL", 7*24*time.Hour),
		CookieSecure: getBool("COOKIE_SECURE", true),

		CORSOrigins: split(get("CORS_ORIGINS", "*")),
		RateRPS:     getInt("RATE_RPS", 100),

		Redis: RedisConfig{
			Addr:     get("REDIS_ADDR", ""),
			Password: get("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},

		AuditDatabaseURL: get("AUDIT_DATABASE_URL", ""),
		Migrate:          getBool("APP_MIGRATE", false),

		Cloudinary: CloudinaryConfig{
			CloudName: get("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    get("CLOUDINARY_API_KEY", ""),
			APISecret: get("CLOUDINARY_API_SECRET", ""),
			Folder:    get("CLOUDINARY_FOLDER", "blogsw"),
		},
		UploadMaxBytes: int64(getInt("UPLOAD_MAX_BYTES", 10<<20)),
	}
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.Env == "prod" && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in prod")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.MongoURI == "" || c.MongoDatabase == "" {
		return errors.New("MONGODB_URI and MONGODB_DATABASE are required")
	}
	return nil
}

func get(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return d
}

func split(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
