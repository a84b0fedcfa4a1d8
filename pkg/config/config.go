package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	PublicURL string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Email      EmailConfig
	Proofs     ProofsConfig
	AdminSeed  AdminSeedConfig
	AdminCache AdminCacheConfig
	Bulk       BulkConfig
	Event      EventConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EmailConfig points at the transactional email API. An empty APIKey means
// the email feature is unavailable; registration and review paths keep
// working and report the email outcome as failed/unavailable.
type EmailConfig struct {
	APIURL  string
	APIKey  string
	From    string
	Timeout time.Duration
	Async   bool
	Retries int
}

// ProofsConfig controls payment-proof storage and upload validation.
type ProofsConfig struct {
	StorageDir       string
	PublicBaseURL    string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// AdminSeedConfig creates the initial dashboard account on startup when
// both values are present and the email is not registered yet.
type AdminSeedConfig struct {
	Email    string
	Password string
	FullName string
}

// AdminCacheConfig tunes the Redis cache in front of the admin list endpoint.
type AdminCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// BulkConfig tunes batched administrative operations.
type BulkConfig struct {
	DeleteBatchSize  int
	InsertBatchSize  int
	InterBatchDelay  time.Duration
	TestDataDefault  int
	ConfirmationText string
}

// EventConfig carries the event details rendered onto tickets.
type EventConfig struct {
	Name  string
	Date  string
	Time  string
	Venue string
	Seat  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PublicURL = strings.TrimRight(v.GetString("APP_PUBLIC_URL"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Email = EmailConfig{
		APIURL:  v.GetString("EMAIL_API_URL"),
		APIKey:  v.GetString("EMAIL_API_KEY"),
		From:    v.GetString("EMAIL_FROM"),
		Timeout: parseDuration(v.GetString("EMAIL_TIMEOUT"), 10*time.Second),
		Async:   v.GetBool("EMAIL_ASYNC"),
		Retries: v.GetInt("EMAIL_RETRIES"),
	}

	maxProofSize := v.GetInt64("PROOFS_MAX_FILE_SIZE")
	if maxProofSize <= 0 {
		maxProofSize = 10 * 1024 * 1024
	}
	cfg.Proofs = ProofsConfig{
		StorageDir:       v.GetString("PROOFS_STORAGE_DIR"),
		PublicBaseURL:    strings.TrimRight(v.GetString("PROOFS_PUBLIC_BASE_URL"), "/"),
		SignedURLSecret:  v.GetString("PROOFS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("PROOFS_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxProofSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("PROOFS_ALLOWED_MIME_TYPES")),
	}

	cfg.AdminSeed = AdminSeedConfig{
		Email:    v.GetString("ADMIN_EMAIL"),
		Password: v.GetString("ADMIN_PASSWORD"),
		FullName: v.GetString("ADMIN_FULL_NAME"),
	}

	cfg.AdminCache = AdminCacheConfig{
		Enabled: v.GetBool("ENABLE_ADMIN_CACHE"),
		TTL:     parseDuration(v.GetString("ADMIN_CACHE_TTL"), time.Minute),
	}

	cfg.Bulk = BulkConfig{
		DeleteBatchSize:  v.GetInt("BULK_DELETE_BATCH_SIZE"),
		InsertBatchSize:  v.GetInt("BULK_INSERT_BATCH_SIZE"),
		InterBatchDelay:  parseDuration(v.GetString("BULK_INTER_BATCH_DELAY"), 100*time.Millisecond),
		TestDataDefault:  v.GetInt("TEST_DATA_DEFAULT_COUNT"),
		ConfirmationText: v.GetString("BULK_DELETE_CONFIRMATION"),
	}

	cfg.Event = EventConfig{
		Name:  v.GetString("EVENT_NAME"),
		Date:  v.GetString("EVENT_DATE"),
		Time:  v.GetString("EVENT_TIME"),
		Venue: v.GetString("EVENT_VENUE"),
		Seat:  v.GetString("EVENT_SEAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("APP_PUBLIC_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tedx_registrations")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "registration-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EMAIL_API_URL", "https://api.resend.com/emails")
	v.SetDefault("EMAIL_API_KEY", "")
	v.SetDefault("EMAIL_FROM", "onboarding@resend.dev")
	v.SetDefault("EMAIL_TIMEOUT", "10s")
	v.SetDefault("EMAIL_ASYNC", false)
	v.SetDefault("EMAIL_RETRIES", 2)

	v.SetDefault("PROOFS_STORAGE_DIR", "./payment-proofs")
	v.SetDefault("PROOFS_PUBLIC_BASE_URL", "http://localhost:8080/files/payment-proofs")
	v.SetDefault("PROOFS_SIGNED_URL_SECRET", "dev_proofs_secret")
	v.SetDefault("PROOFS_SIGNED_URL_TTL", "30m")
	v.SetDefault("PROOFS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("PROOFS_ALLOWED_MIME_TYPES", "image/jpeg,image/jpg,image/png,application/pdf")

	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_FULL_NAME", "TEDxECU Admin")

	v.SetDefault("ENABLE_ADMIN_CACHE", false)
	v.SetDefault("ADMIN_CACHE_TTL", "1m")

	v.SetDefault("BULK_DELETE_BATCH_SIZE", 10)
	v.SetDefault("BULK_INSERT_BATCH_SIZE", 50)
	v.SetDefault("BULK_INTER_BATCH_DELAY", "100ms")
	v.SetDefault("TEST_DATA_DEFAULT_COUNT", 500)
	v.SetDefault("BULK_DELETE_CONFIRMATION", "DELETE ALL TEST DATA")

	v.SetDefault("EVENT_NAME", "TEDxECU 2025")
	v.SetDefault("EVENT_DATE", "June 20, 2025")
	v.SetDefault("EVENT_TIME", "9:00 AM - 6:00 PM")
	v.SetDefault("EVENT_VENUE", "Egyptian Chinese University")
	v.SetDefault("EVENT_SEAT", "General Admission")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
