package config

import (
	"testing"
	"time"

	"github.com/crickarena/crickarena/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_ProdRequiresJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APP_ENV=prod without JWT_SECRET")
	}
}

func TestLoad_DevFallsBackToInsecureSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("expected a dev fallback JWT secret")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_CricketAPIConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CRICKET_API_BASE_URL", "https://api.example.com/v1/")
	t.Setenv("CRICKET_API_KEY", "key-123")
	t.Setenv("CRICKET_API_TIMEOUT", "8s")
	t.Setenv("CRICKET_API_MAX_RETRIES", "3")
	t.Setenv("CRICKET_API_CIRCUIT_ENABLED", "true")
	t.Setenv("CRICKET_API_CIRCUIT_FAILURE_COUNT", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CricketAPIKey != "key-123" {
		t.Fatalf("unexpected CricketAPIKey")
	}
	if cfg.CricketAPITimeout != 8*time.Second {
		t.Fatalf("unexpected CricketAPITimeout: %s", cfg.CricketAPITimeout)
	}
	if cfg.CricketAPIMaxRetries != 3 {
		t.Fatalf("unexpected CricketAPIMaxRetries: %d", cfg.CricketAPIMaxRetries)
	}
	if !cfg.CricketAPICircuitEnabled || cfg.CricketAPICircuitFailureCount != 7 {
		t.Fatalf("unexpected circuit config: enabled=%v count=%d", cfg.CricketAPICircuitEnabled, cfg.CricketAPICircuitFailureCount)
	}
}

func TestLoad_InvalidDurationsRejected(t *testing.T) {
	cases := []string{
		"APP_READ_TIMEOUT",
		"TOKEN_TTL",
		"CRICKET_API_TIMEOUT",
		"CACHE_TTL",
	}
	for _, key := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, "not-a-duration")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for invalid %s", key)
			}
		})
	}
}

func TestLoad_BcryptCostBounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BCRYPT_COST", "40")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for BCRYPT_COST out of range")
	}
}

func TestLoad_RestrictedStates(t *testing.T) {
	t.Run("defaults apply when unset", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("RESTRICTED_STATES", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.RestrictedStates) != len(DefaultRestrictedStates) {
			t.Fatalf("restricted states = %v", cfg.RestrictedStates)
		}
		if !cfg.IsStateRestricted("telangana") {
			t.Fatalf("expected Telangana to be restricted by default")
		}
		if cfg.IsStateRestricted("Karnataka") {
			t.Fatalf("Karnataka should not be restricted")
		}
	})

	t.Run("override replaces the defaults", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("RESTRICTED_STATES", "Goa, Kerala")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.IsStateRestricted(" GOA ") {
			t.Fatalf("expected Goa to be restricted")
		}
		if cfg.IsStateRestricted("Telangana") {
			t.Fatalf("override should drop the default list")
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.SessionCookieName != "ca_session" {
		t.Fatalf("unexpected SessionCookieName: %q", cfg.SessionCookieName)
	}
	if cfg.TokenTTL != 168*time.Hour {
		t.Fatalf("unexpected TokenTTL: %s", cfg.TokenTTL)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %v", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}
