// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_URL", "DATABASE_TYPE", "JWT_SECRET", "TOKEN_TTL",
		"SECURE_COOKIES", "REDIS_URL", "SUGGESTION_TTL", "MAX_IMAGE_BYTES",
		"LOGIN_RATE", "LOGIN_BURST", "ADMIN_EMAIL", "ADMIN_PASSWORD", "LOG_FORMAT",
		"TRUST_PROXY",
	} {
		t.Setenv(k, "")
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("MAX_IMAGE_BYTES", "2MiB")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabasePostgres {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("expected 30m token TTL, got %s", cfg.TokenTTL)
	}
	if cfg.MaxImageBytes != 2<<20 {
		t.Errorf("expected 2MiB image limit, got %d", cfg.MaxImageBytes)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := ParseFlags([]string{"-d", "file:kre.db", "--jwt-secret", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected sqlite default, got %s", cfg.DatabaseType)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected 1h token TTL, got %s", cfg.TokenTTL)
	}
	if cfg.MaxImageBytes != 5<<20 {
		t.Errorf("expected 5MiB image limit, got %d", cfg.MaxImageBytes)
	}
	if cfg.LoginBurst != 5 {
		t.Errorf("expected login burst 5, got %d", cfg.LoginBurst)
	}
	if cfg.TrustProxy {
		t.Error("forwarded headers must not be trusted by default")
	}
}

func TestParseFlags_TrustProxy(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := ParseFlags([]string{"-d", "file:kre.db", "--jwt-secret", "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.TrustProxy {
		t.Error("expected TRUST_PROXY to enable proxy trust")
	}

	cfg, err = ParseFlags([]string{"-d", "file:kre.db", "--jwt-secret", "s1", "--trust-proxy=false"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TrustProxy {
		t.Error("CLI should override env for --trust-proxy")
	}

	t.Setenv("TRUST_PROXY", "maybe")
	if _, err := ParseFlags([]string{"-d", "x", "--jwt-secret", "s"}); err == nil {
		t.Error("expected an error for an invalid TRUST_PROXY")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "--jwt-secret", "from-cli"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.JWTSecret != "from-cli" {
		t.Errorf("CLI should override env: expected from-cli, got %s", cfg.JWTSecret)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing database url", []string{"--jwt-secret", "s"}},
		{"missing secret", []string{"-d", "file:test.db"}},
		{"bad database type", []string{"-d", "x", "-t", "mysql", "--jwt-secret", "s"}},
		{"bad image size", []string{"-d", "x", "--jwt-secret", "s", "--max-image-bytes", "lots"}},
		{"admin email without password", []string{"-d", "x", "--jwt-secret", "s", "--admin-email", "a@b.c"}},
		{"unknown flag", []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
