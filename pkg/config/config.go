package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Redirect  RedirectConfig
	Email     EmailConfig
	PDF       PDFConfig
	Storage   StorageConfig
	Kafka     KafkaConfig

	Housekeeping HousekeepingConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrateOnStart bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RedirectConfig controls the permanent redirect of API traffic hitting a
// legacy host to the canonical one.
type RedirectConfig struct {
	LegacyHosts   []string
	CanonicalHost string
}

type EmailConfig struct {
	APIKey  string
	BaseURL string
	From    string
}

type PDFConfig struct {
	ServiceURL string
	APIKey     string
}

type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PresignMinutes  int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// HousekeepingConfig drives the in-process cleanup of builder drafts,
// dashboard CSRF tokens and idle rate-limit buckets.
type HousekeepingConfig struct {
	Schedule            string
	DraftMaxIdleMinutes int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// URL returns the connection string in URL form, as expected by golang-migrate.
func (d *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func (s *StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

func (s *StorageConfig) PresignTTL() time.Duration {
	return time.Duration(s.PresignMinutes) * time.Minute
}

func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func (h *HousekeepingConfig) DraftMaxIdle() time.Duration {
	return time.Duration(h.DraftMaxIdleMinutes) * time.Minute
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "propale")
	v.SetDefault("DATABASE_PASSWORD", "propale_secret")
	v.SetDefault("DATABASE_NAME", "propale")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MIGRATE_ON_START", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("RATE_LIMIT_REQUESTS", 300)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("REDIRECT_LEGACY_HOSTS", "propale.co")
	v.SetDefault("REDIRECT_CANONICAL_HOST", "app.propale.co")
	v.SetDefault("EMAIL_BASE_URL", "https://api.resend.com")
	v.SetDefault("EMAIL_FROM", "Propale <noreply@propale.co>")
	v.SetDefault("PDF_SERVICE_URL", "http://localhost:3001")
	v.SetDefault("STORAGE_REGION", "eu-west-3")
	v.SetDefault("STORAGE_PRESIGN_MINUTES", 60)
	v.SetDefault("KAFKA_TOPIC", "propale.events")
	v.SetDefault("HOUSEKEEPING_SCHEDULE", "*/10 * * * *")
	v.SetDefault("HOUSEKEEPING_DRAFT_MAX_IDLE_MINUTES", 120)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DATABASE_HOST"),
			Port:           v.GetInt("DATABASE_PORT"),
			User:           v.GetString("DATABASE_USER"),
			Password:       v.GetString("DATABASE_PASSWORD"),
			Name:           v.GetString("DATABASE_NAME"),
			SSLMode:        v.GetString("DATABASE_SSLMODE"),
			MigrateOnStart: v.GetBool("DATABASE_MIGRATE_ON_START"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Redirect: RedirectConfig{
			LegacyHosts:   splitList(v.GetString("REDIRECT_LEGACY_HOSTS")),
			CanonicalHost: v.GetString("REDIRECT_CANONICAL_HOST"),
		},
		Email: EmailConfig{
			APIKey:  v.GetString("EMAIL_API_KEY"),
			BaseURL: v.GetString("EMAIL_BASE_URL"),
			From:    v.GetString("EMAIL_FROM"),
		},
		PDF: PDFConfig{
			ServiceURL: v.GetString("PDF_SERVICE_URL"),
			APIKey:     v.GetString("PDF_API_KEY"),
		},
		Storage: StorageConfig{
			Bucket:          v.GetString("STORAGE_BUCKET"),
			Region:          v.GetString("STORAGE_REGION"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			PresignMinutes:  v.GetInt("STORAGE_PRESIGN_MINUTES"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Housekeeping: HousekeepingConfig{
			Schedule:            v.GetString("HOUSEKEEPING_SCHEDULE"),
			DraftMaxIdleMinutes: v.GetInt("HOUSEKEEPING_DRAFT_MAX_IDLE_MINUTES"),
		},
	}

	return cfg, nil
}

// splitList turns a comma separated setting into a slice, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
