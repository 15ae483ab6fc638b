package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	JWTSecret     string
	TokenTTL      time.Duration
	SecureCookies bool

	RedisURL      string
	SuggestionTTL time.Duration

	MaxImageBytes int64
	LoginRate     float64
	LoginBurst    int
	TrustProxy    bool

	AdminEmail    string
	AdminPassword string

	LogFormat string
}

// ParseFlags reads CLI flags and falls back to environment variables for
// anything not given on the command line.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var maxImage string

	fs := pflag.NewFlagSet("kre", pflag.ContinueOnError)

	// Network and storage
	fs.IntVarP(&cfg.Port, "port", "p", 3318, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", DatabaseSQLite, "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis-url", "", "Redis URL for the suggestion cache (optional)")

	// Sessions (prefer env variables for the secret, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Token signing secret (prefer env)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", time.Hour, "Session token lifetime")
	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", false, "Mark session cookies Secure")

	// Limits
	fs.DurationVar(&cfg.SuggestionTTL, "suggestion-ttl", time.Minute, "Search suggestion cache TTL")
	fs.StringVar(&maxImage, "max-image-bytes", "5MiB", "Largest accepted image upload")
	fs.Float64Var(&cfg.LoginRate, "login-rate", 1, "Login attempts per second per client")
	fs.IntVar(&cfg.LoginBurst, "login-burst", 5, "Login attempt burst per client")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Identify clients by X-Forwarded-For (only behind a reverse proxy)")

	// Bootstrap admin
	fs.StringVar(&cfg.AdminEmail, "admin-email", "", "Bootstrap admin email")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Bootstrap admin password (prefer env)")

	fs.StringVar(&cfg.LogFormat, "log-format", "text", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if !fs.Changed("port") {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		}
	}
	envString(fs, "database-url", "DATABASE_URL", &cfg.DatabaseURL)
	envString(fs, "database-type", "DATABASE_TYPE", &cfg.DatabaseType)
	envString(fs, "redis-url", "REDIS_URL", &cfg.RedisURL)
	envString(fs, "jwt-secret", "JWT_SECRET", &cfg.JWTSecret)
	envString(fs, "admin-email", "ADMIN_EMAIL", &cfg.AdminEmail)
	envString(fs, "admin-password", "ADMIN_PASSWORD", &cfg.AdminPassword)
	envString(fs, "log-format", "LOG_FORMAT", &cfg.LogFormat)
	envString(fs, "max-image-bytes", "MAX_IMAGE_BYTES", &maxImage)

	if err := envDuration(fs, "token-ttl", "TOKEN_TTL", &cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if err := envDuration(fs, "suggestion-ttl", "SUGGESTION_TTL", &cfg.SuggestionTTL); err != nil {
		return Config{}, err
	}
	if err := envBool(fs, "secure-cookies", "SECURE_COOKIES", &cfg.SecureCookies); err != nil {
		return Config{}, err
	}
	if err := envBool(fs, "trust-proxy", "TRUST_PROXY", &cfg.TrustProxy); err != nil {
		return Config{}, err
	}
	if !fs.Changed("login-rate") {
		if v := os.Getenv("LOGIN_RATE"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Config{}, errors.New("invalid LOGIN_RATE env variable")
			}
			cfg.LoginRate = f
		}
	}
	if !fs.Changed("login-burst") {
		if v := os.Getenv("LOGIN_BURST"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid LOGIN_BURST env variable")
			}
			cfg.LoginBurst = n
		}
	}

	size, err := humanize.ParseBytes(maxImage)
	if err != nil || size == 0 {
		return Config{}, fmt.Errorf("invalid max image size %q", maxImage)
	}
	cfg.MaxImageBytes = int64(size)

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres:
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

func envString(fs *pflag.FlagSet, flag, env string, dst *string) {
	if fs.Changed(flag) {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func envDuration(fs *pflag.FlagSet, flag, env string, dst *time.Duration) error {
	if fs.Changed(flag) {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s env variable: %w", env, err)
	}
	*dst = d
	return nil
}

func envBool(fs *pflag.FlagSet, flag, env string, dst *bool) error {
	if fs.Changed(flag) {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s env variable", env)
	}
	*dst = b
	return nil
}
