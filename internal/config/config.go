package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Session   SessionConfig   `yaml:"session"`
	Login     LoginConfig     `yaml:"login"`
	UI        UIConfig        `yaml:"ui"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port            int            `yaml:"port"`
	Host            string         `yaml:"host"`
	BaseURL         string         `yaml:"base_url"` // Optional: public URL (e.g., https://login.example.com)
	ReadTimeout     time.Duration  `yaml:"read_timeout"`
	WriteTimeout    time.Duration  `yaml:"write_timeout"`
	IdleTimeout     time.Duration  `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	Security        SecurityConfig `yaml:"security"`
}

// SecurityConfig contains security-related settings
type SecurityConfig struct {
	CSRFEnabled     bool                  `yaml:"csrf_enabled"`
	CSRFFieldName   string                `yaml:"csrf_field_name"`
	MaxRequestBytes int64                 `yaml:"max_request_bytes"`
	Headers         SecurityHeadersConfig `yaml:"headers"`
}

// SecurityHeadersConfig contains HTTP security header settings
type SecurityHeadersConfig struct {
	XFrameOptions           string `yaml:"x_frame_options"`
	XContentTypeOptions     string `yaml:"x_content_type_options"`
	ReferrerPolicy          string `yaml:"referrer_policy"`
	ContentSecurityPolicy   string `yaml:"content_security_policy"`
	StrictTransportSecurity string `yaml:"strict_transport_security"`
}

// SessionConfig controls the browser-id cookie and how long idle forms are kept
type SessionConfig struct {
	Secret         string        `yaml:"secret"`
	MaxAge         int           `yaml:"max_age"`
	CookieSecure   string        `yaml:"cookie_secure"`   // "auto", "true", "false"
	CookieSameSite string        `yaml:"cookie_samesite"` // "strict", "lax", "none"
	FormTTL        time.Duration `yaml:"form_ttl"`
}

// LoginConfig contains login form behaviour
type LoginConfig struct {
	SimulatedDelay time.Duration `yaml:"simulated_delay"`
}

// UIConfig contains presentation overrides
type UIConfig struct {
	Title      string `yaml:"title"`
	ShellClass string `yaml:"shell_class"`
	FormClass  string `yaml:"form_class"`
}

// RateLimitConfig contains rate limiting settings for form posts
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerWindow int           `yaml:"requests_per_window"`
	WindowDuration    time.Duration `yaml:"window_duration"`
	Burst             int           `yaml:"burst"`
}

// MetricsConfig contains Prometheus endpoint settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultContentSecurityPolicy allows what the login page loads: its own stylesheet and
// script, the form post to /login and the script's fetch to /signup
const DefaultContentSecurityPolicy = "default-src 'none'; script-src 'self'; style-src 'self'; img-src 'self'; connect-src 'self'; form-action 'self'; frame-ancestors 'none'; base-uri 'none'"

// Default returns a configuration that runs locally without a config file.
// The session secret still has to come from SESSION_SECRET.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "localhost",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Security: SecurityConfig{
				CSRFEnabled:     true,
				CSRFFieldName:   "csrf_token",
				MaxRequestBytes: 1 << 20,
				Headers: SecurityHeadersConfig{
					XFrameOptions:           "DENY",
					XContentTypeOptions:     "nosniff",
					ReferrerPolicy:          "strict-origin-when-cross-origin",
					ContentSecurityPolicy:   DefaultContentSecurityPolicy,
					StrictTransportSecurity: "max-age=31536000; includeSubDomains",
				},
			},
		},
		Session: SessionConfig{
			MaxAge:         86400,
			CookieSecure:   "auto",
			CookieSameSite: "lax",
			FormTTL:        30 * time.Minute,
		},
		Login: LoginConfig{
			SimulatedDelay: time.Second,
		},
		UI: UIConfig{
			Title: "Log in",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerWindow: 30,
			WindowDuration:    time.Minute,
			Burst:             10,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadDotEnv loads a .env file into the environment if one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from the specified file path on top of Default().
// A missing file is only an error when mustExist is set.
func Load(path string, mustExist bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables in the config
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !mustExist:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables if set
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" && cfg.Session.Secret == "" {
		cfg.Session.Secret = secret
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set
func (c *Config) Validate() error {
	// Session validation
	if c.Session.Secret == "" || strings.Contains(c.Session.Secret, "${") {
		return fmt.Errorf("session.secret is required (set SESSION_SECRET environment variable)")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session.secret must be at least 32 characters")
	}
	switch strings.ToLower(c.Session.CookieSecure) {
	case "", "auto", "true", "false":
	default:
		return fmt.Errorf("session.cookie_secure must be one of auto, true, false")
	}
	switch strings.ToLower(c.Session.CookieSameSite) {
	case "", "strict", "lax", "none":
	default:
		return fmt.Errorf("session.cookie_samesite must be one of strict, lax, none")
	}
	if c.Session.FormTTL <= 0 {
		return fmt.Errorf("session.form_ttl must be positive")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.Security.MaxRequestBytes < 0 {
		return fmt.Errorf("server.security.max_request_bytes must not be negative")
	}

	// Login validation
	if c.Login.SimulatedDelay < 0 {
		return fmt.Errorf("login.simulated_delay must not be negative")
	}

	// Rate limit validation
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerWindow < 1 {
			return fmt.Errorf("rate_limit.requests_per_window must be at least 1")
		}
		if c.RateLimit.WindowDuration <= 0 {
			return fmt.Errorf("rate_limit.window_duration must be positive")
		}
	}

	// Metrics validation
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	return nil
}

// GetAddr returns the full server address (host:port)
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetBaseURL returns the public base URL
// Uses base_url if set, otherwise constructs from host:port
func (c *Config) GetBaseURL() string {
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL
	}
	return fmt.Sprintf("http://%s", c.GetAddr())
}

// IsHTTPS returns true if the base URL uses HTTPS
func (c *Config) IsHTTPS() bool {
	return strings.HasPrefix(strings.ToLower(c.GetBaseURL()), "https://")
}

// CookieSecure resolves session.cookie_secure, where "auto" follows the base URL scheme
func (c *Config) CookieSecure() bool {
	switch strings.ToLower(c.Session.CookieSecure) {
	case "true":
		return true
	case "false":
		return false
	default:
		return c.IsHTTPS()
	}
}

// CookieSameSite resolves session.cookie_samesite, defaulting to Lax
func (c *Config) CookieSameSite() http.SameSite {
	switch strings.ToLower(c.Session.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
