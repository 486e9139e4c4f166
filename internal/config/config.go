package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenTTL        time.Duration
	ClientURL       string
	AdminEmail      string
	AdminPassword   string
	DeliveryCharge  decimal.Decimal
	ShutdownTimeout time.Duration
	LogLevel        slog.Level

	Gateways GatewaysConfig
	Kafka    KafkaConfig
	Sweeper  SweeperConfig
}

// GatewaysConfig groups payment provider credentials. Empty secrets leave the
// corresponding adapter unusable.
type GatewaysConfig struct {
	Timeout  time.Duration
	Stripe   StripeConfig
	Razorpay RazorpayConfig
	PayPal   PayPalConfig
}

// StripeConfig configures the card gateway.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	Currency      string
}

// RazorpayConfig configures the regional gateway.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Currency  string
}

// PayPalConfig configures the wallet gateway.
type PayPalConfig struct {
	ClientID string
	Secret   string
	BaseURL  string
	Currency string
}

// KafkaConfig configures order event publication. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

// SweeperConfig controls removal of abandoned pending orders.
type SweeperConfig struct {
	PendingTTL time.Duration
	Interval   time.Duration
	Workers    int
	BatchSize  int
}

const (
	defaultRunAddress      = ":8080"
	defaultJWTSecret       = "change-me-in-production"
	defaultTokenTTL        = 7 * 24 * time.Hour
	defaultDeliveryCharge  = "10"
	defaultShutdownTimeout = 10 * time.Second
	defaultGatewayTimeout  = 15 * time.Second
	defaultStripeURL       = "https://api.stripe.com"
	defaultStripeCurrency  = "usd"
	defaultRazorpayURL     = "https://api.razorpay.com"
	defaultRazorpayCurr    = "INR"
	defaultPayPalURL       = "https://api-m.sandbox.paypal.com"
	defaultPayPalCurrency  = "USD"
	defaultOrderTopic      = "beautymart.orders"
	defaultPendingTTL      = 24 * time.Hour
	defaultSweepInterval   = time.Minute
	defaultWorkerPoolSize  = 2
	defaultSweepBatchSize  = 50
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		JWTSecret:       getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:        getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		ClientURL:       getString(lookup, "CLIENT_URL", ""),
		AdminEmail:      getString(lookup, "ADMIN_EMAIL", ""),
		AdminPassword:   getString(lookup, "ADMIN_PASSWORD", ""),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		Gateways: GatewaysConfig{
			Timeout: getDuration(lookup, "GATEWAY_TIMEOUT", defaultGatewayTimeout),
			Stripe: StripeConfig{
				SecretKey:     getString(lookup, "STRIPE_SECRET_KEY", ""),
				WebhookSecret: getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
				BaseURL:       getString(lookup, "STRIPE_API_URL", defaultStripeURL),
				Currency:      getString(lookup, "STRIPE_CURRENCY", defaultStripeCurrency),
			},
			Razorpay: RazorpayConfig{
				KeyID:     getString(lookup, "RAZORPAY_KEY_ID", ""),
				KeySecret: getString(lookup, "RAZORPAY_KEY_SECRET", ""),
				BaseURL:   getString(lookup, "RAZORPAY_API_URL", defaultRazorpayURL),
				Currency:  getString(lookup, "RAZORPAY_CURRENCY", defaultRazorpayCurr),
			},
			PayPal: PayPalConfig{
				ClientID: getString(lookup, "PAYPAL_CLIENT_ID", ""),
				Secret:   getString(lookup, "PAYPAL_SECRET_KEY", ""),
				BaseURL:  getString(lookup, "PAYPAL_API_URL", defaultPayPalURL),
				Currency: getString(lookup, "PAYPAL_CURRENCY", defaultPayPalCurrency),
			},
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(getString(lookup, "KAFKA_BROKERS", "")),
			OrderTopic: getString(lookup, "KAFKA_ORDER_TOPIC", defaultOrderTopic),
		},
		Sweeper: SweeperConfig{
			PendingTTL: getDuration(lookup, "PENDING_ORDER_TTL", defaultPendingTTL),
			Interval:   getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
			Workers:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
			BatchSize:  getInt(lookup, "SWEEP_BATCH_SIZE", defaultSweepBatchSize),
		},
	}

	fs := flag.NewFlagSet("beautymart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		pendingTTLStr      = cfg.Sweeper.PendingTTL.String()
		sweepIntervalStr   = cfg.Sweeper.Interval.String()
		deliveryChargeStr  = getString(lookup, "DELIVERY_CHARGE", defaultDeliveryCharge)
		logLevelStr        = getString(lookup, "LOG_LEVEL", "info")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.ClientURL, "client-url", cfg.ClientURL, "Storefront base URL used for payment redirects")
	fs.StringVar(&deliveryChargeStr, "delivery-charge", deliveryChargeStr, "Flat delivery charge added to card checkouts")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&pendingTTLStr, "pending-ttl", pendingTTLStr, "Age after which unpaid gateway orders are discarded")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between pending order sweeps")
	fs.IntVar(&cfg.Sweeper.Workers, "worker-pool", cfg.Sweeper.Workers, "Number of concurrent sweep workers")
	fs.IntVar(&cfg.Sweeper.BatchSize, "sweep-batch", cfg.Sweeper.BatchSize, "Maximum orders per sweep batch")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.Sweeper.PendingTTL, err = time.ParseDuration(pendingTTLStr); err != nil {
		return nil, fmt.Errorf("invalid pending ttl: %w", err)
	}

	if cfg.Sweeper.Interval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.DeliveryCharge, err = decimal.NewFromString(deliveryChargeStr); err != nil {
		return nil, fmt.Errorf("invalid delivery charge: %w", err)
	}
	if cfg.DeliveryCharge.IsNegative() {
		return nil, fmt.Errorf("delivery charge must not be negative")
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if err := readSecretFiles(cfg, lookup); err != nil {
		return nil, err
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.Gateways.Timeout <= 0 {
		cfg.Gateways.Timeout = defaultGatewayTimeout
	}

	if cfg.Sweeper.PendingTTL <= 0 {
		cfg.Sweeper.PendingTTL = defaultPendingTTL
	}

	if cfg.Sweeper.Interval <= 0 {
		cfg.Sweeper.Interval = defaultSweepInterval
	}

	if cfg.Sweeper.Workers <= 0 {
		cfg.Sweeper.Workers = defaultWorkerPoolSize
	}

	if cfg.Sweeper.BatchSize <= 0 {
		cfg.Sweeper.BatchSize = defaultSweepBatchSize
	}

	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

// readSecretFiles lets every secret be supplied as a mounted file.
func readSecretFiles(cfg *Config, lookup envLookup) error {
	targets := []struct {
		key string
		dst *string
	}{
		{"JWT_SECRET_FILE", &cfg.JWTSecret},
		{"ADMIN_PASSWORD_FILE", &cfg.AdminPassword},
		{"STRIPE_SECRET_KEY_FILE", &cfg.Gateways.Stripe.SecretKey},
		{"STRIPE_WEBHOOK_SECRET_FILE", &cfg.Gateways.Stripe.WebhookSecret},
		{"RAZORPAY_KEY_SECRET_FILE", &cfg.Gateways.Razorpay.KeySecret},
		{"PAYPAL_SECRET_KEY_FILE", &cfg.Gateways.PayPal.Secret},
	}

	for _, target := range targets {
		path, ok := lookup(target.key)
		if !ok || path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", strings.ToLower(target.key), err)
		}
		*target.dst = strings.TrimSpace(string(content))
	}
	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
