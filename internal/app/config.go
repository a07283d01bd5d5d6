package app

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the starter application.
type Config struct {
	DataDir     string
	BindAddress string
	Port        int
	BaseURL     string

	SessionSecret string
	AdminKey      string
	PublicMetrics bool

	StripeAPIKey        string
	StripeWebhookSecret string

	LoginRoute   string
	LandingRoute string

	ProtectedRoutes []string
	AuthRoutes      []string
	LogoutRoutes    []string
}

// StoreDir returns the directory where the subscription database lives.
func (c *Config) StoreDir() string {
	return c.DataDir
}

// LoadConfig loads configuration from environment variables.
// A .env file is loaded if present but not required.
func LoadConfig() (*Config, error) {
	// Best-effort .env loading (not required)
	_ = godotenv.Load()

	port, err := envOrDefaultInt("LK_PORT", 8080)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:             envOrDefault("LK_DATA_DIR", "/data"),
		BindAddress:         envOrDefault("LK_BIND_ADDRESS", "0.0.0.0"),
		Port:                port,
		BaseURL:             strings.TrimSpace(os.Getenv("LK_BASE_URL")),
		SessionSecret:       strings.TrimSpace(os.Getenv("LK_SESSION_SECRET")),
		AdminKey:            strings.TrimSpace(os.Getenv("LK_ADMIN_KEY")),
		PublicMetrics:       envBool("LK_PUBLIC_METRICS"),
		StripeAPIKey:        strings.TrimSpace(os.Getenv("STRIPE_API_KEY")),
		StripeWebhookSecret: strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
		LoginRoute:          envOrDefault("LK_LOGIN_ROUTE", "/login"),
		LandingRoute:        envOrDefault("LK_LANDING_ROUTE", "/dashboard"),
		ProtectedRoutes:     envList("LK_PROTECTED_ROUTES", []string{"/dashboard", "/dashboard/*", "/settings", "/settings/*"}),
		AuthRoutes:          envList("LK_AUTH_ROUTES", []string{"/login", "/signup"}),
		LogoutRoutes:        envList("LK_LOGOUT_ROUTES", []string{"/logout"}),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.SessionSecret == "" {
		missing = append(missing, "LK_SESSION_SECRET")
	}
	if c.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("LK_PORT must be between 1 and 65535, got %d", c.Port)
	}

	if c.BaseURL != "" {
		parsed, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("LK_BASE_URL must be a valid URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("LK_BASE_URL must use http or https scheme")
		}
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) (int, error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
		}
		return n, nil
	}
	return fallback, nil
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
