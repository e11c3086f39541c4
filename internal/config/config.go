package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	legacyPostgresScheme = "postgres://"
	postgresScheme       = "postgresql://"

	defaultHTTPPort = "8080"

	// SessionLifetime is how long a login session stays valid.
	SessionLifetime = 8 * time.Hour
)

// Flag is a boolean that is true only for the value "true", in any case.
// Every other value, malformed ones included, decodes to false.
type Flag bool

// Decode implements envconfig.Decoder.
func (f *Flag) Decode(value string) error {
	*f = Flag(strings.EqualFold(value, "true"))
	return nil
}

// Config holds application configuration values.
type Config struct {
	SecretKey           string `envconfig:"SECRET_KEY" default:"dev-change-me"`
	DatabaseURL         string `envconfig:"DATABASE_URL"`
	BaseDir             string `envconfig:"CLINIC_BASE_DIR"`
	SessionCookieSecure Flag   `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	HTTPPort            string `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel            string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat           string `envconfig:"LOG_FORMAT" default:"console"`

	Admin AdminConfig `ignored:"true"`

	Session SessionConfig `ignored:"true"`

	// Warnings collects fallbacks applied while loading, for the caller to log.
	Warnings []string `ignored:"true"`
}

// AdminConfig holds the credentials of the account seeded into an empty database.
type AdminConfig struct {
	Username string `envconfig:"ADMIN_USER" default:"admin"`
	Password string `envconfig:"ADMIN_PASS" default:"admin123"`
}

// SessionConfig holds the static cookie settings of the login session.
type SessionConfig struct {
	CookieName string
	HTTPOnly   bool
	SameSite   http.SameSite
	Secure     bool
	Lifetime   time.Duration
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Admin); err != nil {
		return Config{}, fmt.Errorf("load admin config: %w", err)
	}

	if cfg.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve base dir: %w", err)
		}
		cfg.BaseDir = wd
	}
	cfg.DatabaseURL = ResolveDatabaseURL(cfg.DatabaseURL, cfg.BaseDir)

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid HTTP_PORT value %q, defaulting to %s", cfg.HTTPPort, defaultHTTPPort))
		cfg.HTTPPort = defaultHTTPPort
	}

	cfg.Session = SessionConfig{
		CookieName: "session",
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		Secure:     bool(cfg.SessionCookieSecure),
		Lifetime:   SessionLifetime,
	}
	return cfg, nil
}

// DefaultDatabaseURL points at the SQLite file under <baseDir>/data.
func DefaultDatabaseURL(baseDir string) string {
	return "sqlite:///" + filepath.ToSlash(filepath.Join(baseDir, "data", "app.db"))
}

// ResolveDatabaseURL returns the override when set, the local default otherwise,
// normalised in both cases.
func ResolveDatabaseURL(override, baseDir string) string {
	url := override
	if url == "" {
		url = DefaultDatabaseURL(baseDir)
	}
	return NormalizeDatabaseURL(url)
}

// NormalizeDatabaseURL rewrites the deprecated postgres:// scheme to
// postgresql://, leaving the remainder of the URL untouched.
func NormalizeDatabaseURL(url string) string {
	if strings.HasPrefix(url, legacyPostgresScheme) {
		return postgresScheme + strings.TrimPrefix(url, legacyPostgresScheme)
	}
	return url
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return ":" + c.HTTPPort
}
