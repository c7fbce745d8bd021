package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"HTTP_PORT", "PAYMENT_PROVIDER", "PAYMENT_POLL_INTERVAL", "PAYMENT_GATEWAY_TIMEOUT",
		"PAYMENT_DEFAULT_EXPIRY_MINUTES", "POLL_MAX_ATTEMPTS", "PERSISTENCE_DRIVER",
		"PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.Gateway.DefaultProvider != ProviderPagarme {
		t.Fatalf("expected pagarme, got %s", cfg.Gateway.DefaultProvider)
	}
	if cfg.Lifecycle.PollInterval != 5*time.Second {
		t.Fatalf("expected 5s poll interval, got %s", cfg.Lifecycle.PollInterval)
	}
	if cfg.Gateway.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.Gateway.Timeout)
	}
	if cfg.Lifecycle.DefaultExpiry != 30*time.Minute {
		t.Fatalf("expected 30m expiry, got %s", cfg.Lifecycle.DefaultExpiry)
	}
	if cfg.Lifecycle.PollMaxAttempts != 0 {
		t.Fatalf("expected unlimited polling, got %d", cfg.Lifecycle.PollMaxAttempts)
	}
	if cfg.Gateway.MockMode {
		t.Fatalf("expected mock mode disabled")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PAYMENT_PROVIDER", "PagBank")
	t.Setenv("PAYMENT_POLL_INTERVAL", "2")
	t.Setenv("PAYMENT_GATEWAY_TIMEOUT", "1500ms")
	t.Setenv("PAYMENT_DEFAULT_EXPIRY_MINUTES", "10")
	t.Setenv("POLL_MAX_ATTEMPTS", "50")
	t.Setenv("PERSISTENCE_DRIVER", "memory")
	t.Setenv("MERCADOPAGO_MOCK", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.HTTPPort != 9090 || cfg.Gateway.DefaultProvider != ProviderPagBank {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Lifecycle.PollInterval != 2*time.Second || cfg.Gateway.Timeout != 1500*time.Millisecond {
		t.Fatalf("unexpected durations: poll=%s timeout=%s", cfg.Lifecycle.PollInterval, cfg.Gateway.Timeout)
	}
	if cfg.Lifecycle.DefaultExpiry != 10*time.Minute || cfg.Lifecycle.PollMaxAttempts != 50 {
		t.Fatalf("unexpected lifecycle cfg: %+v", cfg.Lifecycle)
	}
	if !cfg.Gateway.MockMode {
		t.Fatalf("expected mock mode from MERCADOPAGO_MOCK")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"bad port":          {"HTTP_PORT", "abc"},
		"bad provider":      {"PAYMENT_PROVIDER", "stripe"},
		"bad interval":      {"PAYMENT_POLL_INTERVAL", "soon"},
		"negative attempts": {"POLL_MAX_ATTEMPTS", "-1"},
		"bad driver":        {"PERSISTENCE_DRIVER", "sqlite"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("PERSISTENCE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "")
	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	})

	t.Run("loads values", func(t *testing.T) {
		t.Setenv("PAGBANK_TOKEN", "")
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("PAGBANK_TOKEN=tok_123\n"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		// godotenv does not override variables that are already set, so clear it first.
		os.Unsetenv("PAGBANK_TOKEN")
		if err := LoadFile(path); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got := os.Getenv("PAGBANK_TOKEN"); got != "tok_123" {
			t.Fatalf("expected tok_123, got %q", got)
		}
	})
}
