package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderPagarme     = "pagarme"
	ProviderPagBank     = "pagbank"
	ProviderMercadoPago = "mercadopago"
	ProviderMock        = "mock"

	PersistenceDynamoDB = "dynamodb"
	PersistencePostgres = "postgres"
	PersistenceMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is read once in main and passed down explicitly.
//
// Supported env vars:
//   - HTTP_PORT (default: 8080)
//   - LOG_LEVEL (default: info), LOG_FORMAT (json|text, default: json)
//   - PAYMENT_PROVIDER (default: pagarme), PAYMENT_ROUTING_RULES (optional)
//   - PAYMENT_GATEWAY_MOCK / MERCADOPAGO_MOCK
//   - PAGARME_API_KEY, PAGARME_BASE_URL, PAGBANK_TOKEN, PAGBANK_BASE_URL, MERCADOPAGO_ACCESS_TOKEN
//   - PAYMENT_DEFAULT_EXPIRY_MINUTES (default: 30)
//   - PAYMENT_POLL_INTERVAL (default: 5s), PAYMENT_GATEWAY_TIMEOUT (default: 30s)
//   - POLL_MAX_ATTEMPTS (default: 0, unlimited)
//   - PERSISTENCE_DRIVER (dynamodb|postgres|memory), PERSIST_BUFFER_SIZE (default: 256)
//   - AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, DYNAMODB_ENDPOINT, PAYMENT_ORDERS_TABLE
//   - POSTGRES_DSN
//   - TRACING_ENABLED
type Config struct {
	HTTPPort  int
	LogLevel  string
	LogFormat string

	Gateway     GatewayConfig
	Lifecycle   LifecycleConfig
	Persistence PersistenceConfig

	TracingEnabled bool
}

type GatewayConfig struct {
	DefaultProvider string
	RoutingRules    string
	MockMode        bool
	Timeout         time.Duration

	PagarmeAPIKey  string
	PagarmeBaseURL string

	PagBankToken   string
	PagBankBaseURL string

	MercadoPagoAccessToken string
}

type LifecycleConfig struct {
	DefaultExpiry   time.Duration
	PollInterval    time.Duration
	PollMaxAttempts int
}

type PersistenceConfig struct {
	Driver     string
	BufferSize int

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	DynamoDBEndpoint   string
	OrdersTable        string

	PostgresDSN string
}

// LoadFile loads an optional dotenv file before Load; a missing file is not an error.
func LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func Load() (Config, error) {
	cfg := Config{
		LogLevel:  getenvDefault("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getenvDefault("LOG_FORMAT", "json")),
		Gateway: GatewayConfig{
			DefaultProvider:        strings.ToLower(getenvDefault("PAYMENT_PROVIDER", ProviderPagarme)),
			RoutingRules:           strings.TrimSpace(os.Getenv("PAYMENT_ROUTING_RULES")),
			MockMode:               isMockEnabled(),
			PagarmeAPIKey:          strings.TrimSpace(os.Getenv("PAGARME_API_KEY")),
			PagarmeBaseURL:         getenvDefault("PAGARME_BASE_URL", "https://api.pagar.me/core/v5"),
			PagBankToken:           strings.TrimSpace(os.Getenv("PAGBANK_TOKEN")),
			PagBankBaseURL:         getenvDefault("PAGBANK_BASE_URL", "https://sandbox.api.pagseguro.com"),
			MercadoPagoAccessToken: strings.TrimSpace(os.Getenv("MERCADOPAGO_ACCESS_TOKEN")),
		},
		Persistence: PersistenceConfig{
			Driver:             strings.ToLower(getenvDefault("PERSISTENCE_DRIVER", PersistenceDynamoDB)),
			AWSRegion:          getenvDefault("AWS_REGION", "us-east-1"),
			AWSAccessKeyID:     getenvDefault("AWS_ACCESS_KEY_ID", "local"),
			AWSSecretAccessKey: getenvDefault("AWS_SECRET_ACCESS_KEY", "local"),
			DynamoDBEndpoint:   os.Getenv("DYNAMODB_ENDPOINT"),
			OrdersTable:        getenvDefault("PAYMENT_ORDERS_TABLE", "payment_orders"),
			PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		},
	}

	var err error
	if cfg.HTTPPort, err = getenvInt("HTTP_PORT", 8080); err != nil {
		return Config{}, err
	}
	if cfg.Gateway.Timeout, err = getenvDuration("PAYMENT_GATEWAY_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Lifecycle.PollInterval, err = getenvDuration("PAYMENT_POLL_INTERVAL", 5*time.Second); err != nil {
		return Config{}, err
	}
	expiryMinutes, err := getenvInt("PAYMENT_DEFAULT_EXPIRY_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.Lifecycle.DefaultExpiry = time.Duration(expiryMinutes) * time.Minute
	if cfg.Lifecycle.PollMaxAttempts, err = getenvInt("POLL_MAX_ATTEMPTS", 0); err != nil {
		return Config{}, err
	}
	if cfg.Persistence.BufferSize, err = getenvInt("PERSIST_BUFFER_SIZE", 256); err != nil {
		return Config{}, err
	}
	cfg.TracingEnabled = isTruthy(os.Getenv("TRACING_ENABLED"))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("%w: PAYMENT_GATEWAY_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.Lifecycle.PollInterval <= 0 {
		return fmt.Errorf("%w: PAYMENT_POLL_INTERVAL must be positive", ErrInvalidConfig)
	}
	if c.Lifecycle.DefaultExpiry <= 0 {
		return fmt.Errorf("%w: PAYMENT_DEFAULT_EXPIRY_MINUTES must be positive", ErrInvalidConfig)
	}
	if c.Lifecycle.PollMaxAttempts < 0 {
		return fmt.Errorf("%w: POLL_MAX_ATTEMPTS cannot be negative", ErrInvalidConfig)
	}
	switch c.Gateway.DefaultProvider {
	case ProviderPagarme, ProviderPagBank, ProviderMercadoPago, ProviderMock:
	default:
		return fmt.Errorf("%w: unknown PAYMENT_PROVIDER %q", ErrInvalidConfig, c.Gateway.DefaultProvider)
	}
	switch c.Persistence.Driver {
	case PersistenceDynamoDB, PersistenceMemory:
	case PersistencePostgres:
		if c.Persistence.PostgresDSN == "" {
			return fmt.Errorf("%w: POSTGRES_DSN is required for the postgres driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown PERSISTENCE_DRIVER %q", ErrInvalidConfig, c.Persistence.Driver)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
	}
	return n, nil
}

// getenvDuration accepts Go durations ("5s") or bare seconds ("5").
func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, key, v)
	}
	return d, nil
}

func isMockEnabled() bool {
	for _, key := range []string{"PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK"} {
		if isTruthy(os.Getenv(key)) {
			return true
		}
	}
	return false
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "mock":
		return true
	}
	return false
}
