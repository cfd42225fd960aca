// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	SeedFile    string `envconfig:"SEED_FILE" default:"./seed/catalog.yaml"`
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Storage     StorageConfig
	TryOn       TryOnConfig
	Push        PushConfig
	Email       EmailConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Catalog     CatalogConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8080"`
	Host         string        `envconfig:"SERVER_HOST" default:"localhost"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
}

type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver       string `envconfig:"DB_DRIVER" default:"postgres"`
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         string `envconfig:"DB_PORT" default:"5432"`
	User         string `envconfig:"DB_USER" default:"postgres"`
	Password     string `envconfig:"DB_PASSWORD"`
	Database     string `envconfig:"DB_NAME" default:"tailor"`
	SSLMode      string `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath   string `envconfig:"DB_SQLITE_PATH" default:"tailor.db"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	MaxLifetime  int    `envconfig:"DB_MAX_LIFETIME" default:"300"`
	LogLevel     string `envconfig:"DB_LOG_LEVEL" default:"silent"`
}

type JWTConfig struct {
	SecretKey      string `envconfig:"JWT_SECRET" default:"your-secret-key-change-in-production"`
	AccessTokenTTL int    `envconfig:"JWT_ACCESS_TTL" default:"168"` // in hours
	CookieDays     int    `envconfig:"COOKIE_EXPIRES_DAYS" default:"7"`
}

type AWSConfig struct {
	Region          string        `envconfig:"AWS_REGION" default:"us-east-1"`
	AccessKeyID     string        `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string        `envconfig:"AWS_SECRET_ACCESS_KEY"`
	S3Bucket        string        `envconfig:"AWS_S3_BUCKET"`
	PublicBaseURL   string        `envconfig:"AWS_PUBLIC_BASE_URL"`
	UploadTimeout   time.Duration `envconfig:"AWS_UPLOAD_TIMEOUT" default:"60s"`
}

// StorageConfig configures the local-disk image store used when no bucket is set.
type StorageConfig struct {
	LocalDir string `envconfig:"STORAGE_LOCAL_DIR" default:"./uploads"`
	LocalURL string `envconfig:"STORAGE_LOCAL_URL" default:"http://localhost:8080/uploads"`
}

type TryOnConfig struct {
	APIKey  string        `envconfig:"RAPIDAPI_KEY"`
	APIHost string        `envconfig:"RAPIDAPI_HOST" default:"try-on-diffusion.p.rapidapi.com"`
	APIURL  string        `envconfig:"RAPIDAPI_URL" default:"https://try-on-diffusion.p.rapidapi.com/try-on-file"`
	Timeout time.Duration `envconfig:"TRYON_TIMEOUT" default:"90s"`
}

type PushConfig struct {
	ExpoURL string        `envconfig:"EXPO_PUSH_URL" default:"https://exp.host/--/api/v2/push/send"`
	Timeout time.Duration `envconfig:"EXPO_PUSH_TIMEOUT" default:"10s"`
}

type EmailConfig struct {
	SMTPHost     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     string `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	FromEmail    string `envconfig:"FROM_EMAIL" default:"noreply@franstailor.com"`
	FromName     string `envconfig:"FROM_NAME" default:"Fran's Tailor"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
	AuthPerMinute     int     `envconfig:"RATE_LIMIT_AUTH_PER_MINUTE" default:"10"`
}

type CatalogConfig struct {
	ProductsPerPage      int `envconfig:"PRODUCTS_PER_PAGE" default:"10"`
	ReviewsPerPage       int `envconfig:"REVIEWS_PER_PAGE" default:"10"`
	WishlistPerPage      int `envconfig:"WISHLIST_PER_PAGE" default:"10"`
	NotificationsPerPage int `envconfig:"NOTIFICATIONS_PER_PAGE" default:"15"`
	HomepageSectionSize  int `envconfig:"HOMEPAGE_SECTION_SIZE" default:"4"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.IsProduction() {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Password == "" && c.IsProduction() {
			return fmt.Errorf("database password is required in production")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Catalog.ProductsPerPage < 1 || c.Catalog.ReviewsPerPage < 1 {
		return fmt.Errorf("page sizes must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// UseS3 reports whether uploads go to the S3 bucket rather than local disk.
func (c *Config) UseS3() bool {
	return c.AWS.S3Bucket != ""
}
