package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/Company-KERL/Kerl-backend/pkg/aws"
	"github.com/joho/godotenv"
)

// AppSecretsName is the Secrets Manager entry read when AWS_USE_SECRETS=true.
const AppSecretsName = "kerl/APP_SECRETS"

// Config holds all configuration for the backend. It is built once at
// startup and handed to the components that need it.
type Config struct {
	Env  string
	Port string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret    string
	JWTExpiry    time.Duration
	BcryptCost   int
	CookieDomain string
	CookieSecure bool

	PaymentProvider     string
	PaymentCurrency     string
	RazorpayKeyID       string
	RazorpayKeySecret   string
	StripeSecretKey     string
	StripeWebhookSecret string

	EventsBackend     string
	EventsSNSTopicARN string
	KafkaBrokers      []string
	KafkaTopic        string

	AWSRegion          string
	AWSUseSecrets      bool
	S3BucketImages     string
	CloudWatchEnabled  bool
	CloudWatchNS       string
	CloudWatchLogGroup string

	AllowedOrigins     []string
	RateLimitPerMinute int
}

// LoadConfig reads configuration from the environment (and an optional
// .env file), applies the Secrets Manager override when enabled and
// validates the result.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "3000"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "kerl"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),

		PaymentProvider:     strings.ToLower(getEnv("PAYMENT_PROVIDER", "razorpay")),
		PaymentCurrency:     getEnv("PAYMENT_CURRENCY", "INR"),
		RazorpayKeyID:       getEnv("RAZORPAY_KEY_ID", os.Getenv("KEY_ID")),
		RazorpayKeySecret:   getEnv("RAZORPAY_KEY_SECRET", os.Getenv("KEY_SECRET")),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		EventsBackend:     strings.ToLower(getEnv("EVENTS_BACKEND", "none")),
		EventsSNSTopicARN: os.Getenv("EVENTS_SNS_TOPIC_ARN"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "kerl.events"),

		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		S3BucketImages:     getEnv("S3_BUCKET_IMAGES", "kerl-product-images"),
		CloudWatchNS:       getEnv("CLOUDWATCH_NAMESPACE", "Kerl"),
		CloudWatchLogGroup: getEnv("CLOUDWATCH_LOG_GROUP", "/kerl/backend"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JWTExpiry, err = getEnvDuration("JWT_EXPIRY", time.Hour); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = getEnvBool("COOKIE_SECURE", cfg.Env == "production"); err != nil {
		return nil, err
	}
	if cfg.AWSUseSecrets, err = getEnvBool("AWS_USE_SECRETS", false); err != nil {
		return nil, err
	}
	if cfg.CloudWatchEnabled, err = getEnvBool("CLOUDWATCH_ENABLED", false); err != nil {
		return nil, err
	}

	// Override credentials from Secrets Manager when running on AWS
	if cfg.AWSUseSecrets {
		awsCfg, err := aws_pkg.LoadAWSConfig(context.Background(), cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		secrets, err := aws_pkg.NewSecretsClient(awsCfg).GetSecretMap(context.Background(), AppSecretsName)
		if err != nil {
			return nil, err
		}
		cfg.ApplySecrets(secrets)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplySecrets overrides sensitive values with non-empty entries of secrets.
func (c *Config) ApplySecrets(secrets map[string]string) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(secrets[key]); v != "" {
			*dst = v
		}
	}
	override(&c.MongoURI, "MONGO_URI")
	override(&c.JWTSecret, "JWT_SECRET")
	override(&c.RazorpayKeySecret, "RAZORPAY_KEY_SECRET")
	override(&c.StripeSecretKey, "STRIPE_SECRET_KEY")
	override(&c.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	override(&c.RedisPassword, "REDIS_PASSWORD")
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	switch c.PaymentProvider {
	case "razorpay":
		if c.RazorpayKeySecret == "" {
			return fmt.Errorf("RAZORPAY_KEY_SECRET is required for the razorpay provider")
		}
	case "stripe":
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required for the stripe provider")
		}
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	switch c.EventsBackend {
	case "none", "":
	case "sns":
		if c.EventsSNSTopicARN == "" {
			return fmt.Errorf("EVENTS_SNS_TOPIC_ARN is required for the sns events backend")
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the kafka events backend")
		}
	default:
		return fmt.Errorf("unknown EVENTS_BACKEND %q", c.EventsBackend)
	}
	return nil
}

// SignatureSecret is the key used to verify payment callback signatures.
func (c *Config) SignatureSecret() string {
	return c.RazorpayKeySecret
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSuffix(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
