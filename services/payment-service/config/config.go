package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	aws_pkg "github.com/scholarpress/journal-backend/pkg/aws"
)

const (
	RazorpaySecretName = "payments/RAZORPAY"
	DBSecretName       = "payments/DB_CREDENTIALS"
)

// Config holds all configuration for the payment service.
type Config struct {
	Port     string `validate:"required,numeric"`
	Env      string `validate:"required"`
	Razorpay RazorpayConfig
	Payment  PaymentConfig
	// Database is nil when no record store is configured.
	Database *DatabaseConfig

	RedisURL            string
	PaymentSNSTopicARN  string
	AllowedOrigins      []string
	CloudWatchEnabled   bool
	RateLimitPerMinute  int `validate:"gt=0"`
	RateLimitBurst      int `validate:"gt=0"`
	ShutdownGracePeriod time.Duration
}

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string        `validate:"required,url"`
	Timeout       time.Duration `validate:"gt=0"`
}

type PaymentConfig struct {
	DefaultAmount int64         `validate:"gt=0"`
	Currency      string        `validate:"required,len=3"`
	StoreTimeout  time.Duration `validate:"gt=0"`
}

type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required,numeric"`
	User     string `validate:"required"`
	Password string `validate:"required"`
	Name     string `validate:"required"`
	SSLMode  string
	TimeZone string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

// Load reads configuration from the environment. When secrets is non-nil
// the Razorpay keys and database credentials are overridden from Secrets
// Manager; a missing secret leaves the environment value in place.
func Load(ctx context.Context, secrets aws_pkg.SecretGetter) (*Config, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if secrets != nil {
		applySecrets(ctx, cfg, secrets)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Database != nil {
		if err := validator.New().Struct(cfg.Database); err != nil {
			return nil, fmt.Errorf("database config incomplete: %w", err)
		}
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	defaultAmount, err := getInt64("PAYMENT_DEFAULT_AMOUNT", 150)
	if err != nil {
		return nil, err
	}
	providerTimeout, err := getDuration("PROVIDER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	storeTimeout, err := getDuration("STORE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	perMinute, err := getInt64("RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return nil, err
	}
	burst, err := getInt64("RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, err
	}
	grace, err := getDuration("SHUTDOWN_GRACE_PERIOD", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port: getEnv("PORT", "4000"),
		Env:  getEnv("APP_ENV", "development"),
		Razorpay: RazorpayConfig{
			KeyID:         os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
			WebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
			BaseURL:       getEnv("RAZORPAY_API_BASE_URL", "https://api.razorpay.com"),
			Timeout:       providerTimeout,
		},
		Payment: PaymentConfig{
			DefaultAmount: defaultAmount,
			Currency:      strings.ToUpper(getEnv("PAYMENT_CURRENCY", "INR")),
			StoreTimeout:  storeTimeout,
		},
		RedisURL:            os.Getenv("REDIS_URL"),
		PaymentSNSTopicARN:  os.Getenv("PAYMENT_SNS_TOPIC_ARN"),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "*")),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		RateLimitPerMinute:  int(perMinute),
		RateLimitBurst:      int(burst),
		ShutdownGracePeriod: grace,
	}

	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		cfg.Database = &DatabaseConfig{
			Host:     host,
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
		}
	}
	return cfg, nil
}

func applySecrets(ctx context.Context, cfg *Config, secrets aws_pkg.SecretGetter) {
	if m, err := aws_pkg.GetSecretMap(ctx, secrets, RazorpaySecretName); err == nil {
		override(&cfg.Razorpay.KeyID, m, "RAZORPAY_KEY_ID")
		override(&cfg.Razorpay.KeySecret, m, "RAZORPAY_KEY_SECRET")
		override(&cfg.Razorpay.WebhookSecret, m, "RAZORPAY_WEBHOOK_SECRET")
	}

	m, err := aws_pkg.GetSecretMap(ctx, secrets, DBSecretName)
	if err != nil {
		return
	}
	if cfg.Database == nil {
		if m["POSTGRES_HOST"] == "" {
			return
		}
		cfg.Database = &DatabaseConfig{Port: "5432", SSLMode: "require", TimeZone: "Asia/Kolkata"}
	}
	override(&cfg.Database.User, m, "POSTGRES_USER")
	override(&cfg.Database.Password, m, "POSTGRES_PASSWORD")
	override(&cfg.Database.Name, m, "POSTGRES_DB")
	override(&cfg.Database.Host, m, "POSTGRES_HOST")
	override(&cfg.Database.Port, m, "POSTGRES_PORT")
}

func override(dst *string, m map[string]string, key string) {
	if v, ok := m[key]; ok && v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
