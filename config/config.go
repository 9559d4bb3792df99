package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/YoussefMohammed93/TheBrothers-Store-sub000/pkg/aws"
	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	Env                  string
	PostgresUser         string
	PostgresPassword     string
	PostgresDB           string
	PostgresHost         string
	PostgresPort         string
	PostgresSSLMode      string
	PostgresTimeZone     string
	RedisURL             string
	CartTTL              time.Duration
	SessionTTL           time.Duration
	StripeSecretKey      string
	StripeWebhookKey     string
	Currency             string
	FallbackShippingCost float64
	PaymentIntentURL     string // remote payment intent endpoint; Stripe is called directly when empty
	OrderServiceURL      string // remote order service; orders are stored locally when empty
	PromotionServiceURL  string
	CheckoutSNSTopicARN  string
	NotificationQueueURL string
	AllowedOrigins       []string
	JWTSecret            string
	TrustGatewayHeaders  bool
	VerifyCardPayments   bool
}

// SecretGetter reads string and JSON secrets.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// LoadConfig reads configuration from the environment, with an optional .env file
// and Secrets Manager override when AWS_USE_SECRETS=true.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			applySecrets(context.Background(), cfg, aws_pkg.NewSecretsClient(awsCfg))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	cartTTL, err := time.ParseDuration(getEnv("CART_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CART_TTL: %w", err)
	}
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	fallback, err := strconv.ParseFloat(getEnv("FALLBACK_SHIPPING_COST", "50"), 64)
	if err != nil || fallback < 0 {
		return nil, fmt.Errorf("invalid FALLBACK_SHIPPING_COST %q", os.Getenv("FALLBACK_SHIPPING_COST"))
	}

	return &Config{
		Port:                 getEnv("PORT", "8093"),
		Env:                  getEnv("ENV", "development"),
		PostgresUser:         os.Getenv("POSTGRES_USER"),
		PostgresPassword:     os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:           os.Getenv("POSTGRES_DB"),
		PostgresHost:         getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:         getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:      getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone:     getEnv("POSTGRES_TIMEZONE", "Africa/Cairo"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CartTTL:              cartTTL,
		SessionTTL:           sessionTTL,
		StripeSecretKey:      os.Getenv("STRIPE_API_KEY"),
		StripeWebhookKey:     os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:             strings.ToLower(getEnv("CHECKOUT_CURRENCY", "egp")),
		FallbackShippingCost: fallback,
		PaymentIntentURL:     os.Getenv("PAYMENT_INTENT_URL"),
		OrderServiceURL:      os.Getenv("ORDER_SERVICE_URL"),
		PromotionServiceURL:  os.Getenv("PROMOTION_SERVICE_URL"),
		CheckoutSNSTopicARN:  os.Getenv("CHECKOUT_SNS_TOPIC_ARN"),
		NotificationQueueURL: os.Getenv("NOTIFICATION_QUEUE_URL"),
		AllowedOrigins:       splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		JWTSecret:            strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TrustGatewayHeaders:  os.Getenv("TRUST_GATEWAY_HEADERS") == "true",
		VerifyCardPayments:   getEnv("VERIFY_CARD_PAYMENTS", "true") == "true",
	}, nil
}

func applySecrets(ctx context.Context, cfg *Config, sm SecretGetter) {
	if m, err := sm.GetSecretMap(ctx, "checkout/DB_CREDENTIALS"); err == nil {
		overrideFrom(m, "POSTGRES_USER", &cfg.PostgresUser)
		overrideFrom(m, "POSTGRES_PASSWORD", &cfg.PostgresPassword)
		overrideFrom(m, "POSTGRES_DB", &cfg.PostgresDB)
		overrideFrom(m, "POSTGRES_HOST", &cfg.PostgresHost)
		overrideFrom(m, "POSTGRES_PORT", &cfg.PostgresPort)
	}
	if v, err := sm.GetSecret(ctx, "checkout/STRIPE_API_KEY"); err == nil && v != "" {
		cfg.StripeSecretKey = v
	}
	if v, err := sm.GetSecret(ctx, "checkout/STRIPE_WEBHOOK_SECRET"); err == nil && v != "" {
		cfg.StripeWebhookKey = v
	}
	if v, err := sm.GetSecret(ctx, "checkout/JWT_SECRET"); err == nil && v != "" {
		cfg.JWTSecret = strings.TrimSpace(v)
	}
}

func (c *Config) validate() error {
	if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" {
		return fmt.Errorf("database config incomplete")
	}
	if c.PaymentIntentURL == "" && c.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_API_KEY or PAYMENT_INTENT_URL is required")
	}
	if c.JWTSecret == "" && !c.TrustGatewayHeaders {
		return fmt.Errorf("JWT_SECRET or TRUST_GATEWAY_HEADERS=true is required")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS lists no origins")
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("invalid CHECKOUT_CURRENCY %q", c.Currency)
	}
	return nil
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func overrideFrom(m map[string]string, key string, dst *string) {
	if v, ok := m[key]; ok && v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "/")); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
