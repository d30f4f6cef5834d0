// Package config provides functionality for managing configuration options
// for the storefront server using command-line flags, a JSON config file
// and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// BaseURL is the origin of the storefront frontend that serves the
	// /state/<slug> and /menu/<id> pages listed in the sitemap. This API
	// server does not render those pages itself.
	BaseURL string `json:"base_url"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// SessionTTL is how long a signed-in session stays valid.
	SessionTTL time.Duration `json:"-"`

	// CleanupInterval is how often expired sessions are purged.
	CleanupInterval time.Duration `json:"-"`

	// CompletionURL is the base URL of the OpenAI-compatible API used for
	// recommendations; /chat/completions is appended by the client.
	CompletionURL string `json:"completion_url"`
	// CompletionAPIKey authenticates against CompletionURL.
	CompletionAPIKey string `json:"completion_api_key"`
	// CompletionModel names the hosted model.
	CompletionModel string `json:"completion_model"`

	// AdminLogins is a comma-separated list of logins allowed to manage products.
	AdminLogins string `json:"admin_logins"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// NewFlagSet registers the storefront flags on a fresh FlagSet bound to o.
func NewFlagSet(name string, o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&o.BaseURL, "b", "http://localhost:3000", "origin of the storefront frontend the sitemap links point at")
	fs.StringVar(&o.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&o.LogLevel, "l", "info", "log level")
	fs.DurationVar(&o.SessionTTL, "session-ttl", 24*time.Hour, "session lifetime")
	fs.DurationVar(&o.CleanupInterval, "cleanup-interval", time.Hour, "expired session cleanup interval")
	fs.StringVar(&o.CompletionURL, "completion-url", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
	fs.StringVar(&o.CompletionModel, "completion-model", "gpt-4o-mini", "chat completion model")
	fs.StringVar(&o.AdminLogins, "admins", "", "comma-separated logins allowed to manage products")
	fs.StringVar(&o.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&o.TLSKey, "tls-key", "", "path to TLS key")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
	return fs
}

// Load parses args, then the config file, then environment overrides.
// Later sources win: flags < config file < environment.
func Load(args []string, getenv func(string) string) (*Options, error) {
	o := &Options{}
	fs := NewFlagSet("server", o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			data, err := os.ReadFile(o.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, o); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	overrides := []struct {
		env string
		dst *string
	}{
		{"SERVER_ADDRESS", &o.Port},
		{"BASE_URL", &o.BaseURL},
		{"DATABASE_DSN", &o.DatabaseDSN},
		{"LOG_LEVEL", &o.LogLevel},
		{"COMPLETION_URL", &o.CompletionURL},
		{"COMPLETION_API_KEY", &o.CompletionAPIKey},
		{"COMPLETION_MODEL", &o.CompletionModel},
		{"ADMIN_LOGINS", &o.AdminLogins},
	}
	for _, ov := range overrides {
		if v := getenv(ov.env); v != "" {
			*ov.dst = v
		}
	}

	if o.SessionTTL <= 0 {
		return nil, fmt.Errorf("session-ttl must be positive, got %s", o.SessionTTL)
	}
	if o.CleanupInterval <= 0 {
		return nil, fmt.Errorf("cleanup-interval must be positive, got %s", o.CleanupInterval)
	}

	return o, nil
}

// Admins splits AdminLogins into individual logins, skipping blanks.
func (o *Options) Admins() []string {
	var out []string
	for _, login := range strings.Split(o.AdminLogins, ",") {
		if login = strings.TrimSpace(login); login != "" {
			out = append(out, login)
		}
	}
	return out
}

// Parse loads options from os.Args and the process environment.
func Parse() (*Options, error) {
	return Load(os.Args[1:], os.Getenv)
}
