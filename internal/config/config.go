// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/codr1/WarungWareg/internal/models"
)

const (
	defaultBackendTimeout = 10 * time.Second
	defaultSessionTTL     = 24 * time.Hour
	defaultPurgeCron      = "*/30 * * * *"
	defaultDigestCron     = "0 7 * * *"
	defaultWindowMonths   = 2
	defaultLabelLayout    = "1/2/2006"
	defaultUploadLimit    = 10 << 20
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BackendConfig struct {
	// BaseURL is the external restaurant API root, e.g. http://localhost:5000/api.
	BaseURL string `yaml:"base_url"`
	// AssetBaseURL prefixes relative image paths returned by the API.
	AssetBaseURL string        `yaml:"asset_base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	UploadLimit  int64         `yaml:"upload_limit_bytes"`
}

type SessionConfig struct {
	TTL       time.Duration `yaml:"ttl"`
	PurgeCron string        `yaml:"purge_cron"`
}

type DashboardConfig struct {
	WindowMonths    int    `yaml:"window_months"`
	Timezone        string `yaml:"timezone"`
	DateLabelLayout string `yaml:"date_label_layout"`
}

type DigestConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Cron      string `yaml:"cron"`
	Recipient string `yaml:"recipient"`
	APIToken  string `yaml:"-"` // Loaded from environment
}

type EmailConfig struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type RateLimitConfig struct {
	LoginMaxAttempts   int           `yaml:"login_max_attempts"`
	LoginLockout       time.Duration `yaml:"login_lockout"`
	LoginMaxLockout    time.Duration `yaml:"login_max_lockout"`
	LoginMaxIPPerHour  int           `yaml:"login_max_ip_per_hour"`
	RegisterMaxPerHour int           `yaml:"register_max_ip_per_hour"`
	TrustProxy         bool          `yaml:"trust_proxy"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		StaticDir   string `yaml:"static_dir"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Backend   BackendConfig   `yaml:"backend"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Digest    DigestConfig    `yaml:"digest"`
	Email     EmailConfig     `yaml:"email"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Theme     models.Theme    `yaml:"theme"`

	Features struct {
		EnableDebug bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Digest.APIToken = os.Getenv("DIGEST_API_TOKEN")
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and applies defaults without touching the environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = "build/bin/static"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = defaultBackendTimeout
	}
	if c.Backend.UploadLimit <= 0 {
		c.Backend.UploadLimit = defaultUploadLimit
	}
	if c.Backend.AssetBaseURL == "" {
		c.Backend.AssetBaseURL = assetOrigin(c.Backend.BaseURL)
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = defaultSessionTTL
	}
	if c.Session.PurgeCron == "" {
		c.Session.PurgeCron = defaultPurgeCron
	}
	if c.Dashboard.WindowMonths <= 0 {
		c.Dashboard.WindowMonths = defaultWindowMonths
	}
	if c.Dashboard.DateLabelLayout == "" {
		c.Dashboard.DateLabelLayout = defaultLabelLayout
	}
	if c.Digest.Cron == "" {
		c.Digest.Cron = defaultDigestCron
	}
	c.Theme = c.Theme.WithDefaults()
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.App.SecretKey == "" {
		return fmt.Errorf("APP_SECRET_KEY is required")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is required")
	}
	if _, err := url.ParseRequestURI(c.Backend.BaseURL); err != nil {
		return fmt.Errorf("backend base_url is invalid: %w", err)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("dashboard timezone: %w", err)
	}
	if err := validateCron(c.Session.PurgeCron); err != nil {
		return fmt.Errorf("session purge_cron: %w", err)
	}
	if err := c.Theme.Validate(); err != nil {
		return fmt.Errorf("theme: %w", err)
	}

	if c.Digest.Enabled {
		if err := validateCron(c.Digest.Cron); err != nil {
			return fmt.Errorf("digest cron: %w", err)
		}
		if c.Digest.Recipient == "" {
			return fmt.Errorf("digest recipient is required when digest is enabled")
		}
		if c.Digest.APIToken == "" {
			return fmt.Errorf("DIGEST_API_TOKEN is required when digest is enabled")
		}
		if c.Email.Region == "" || c.Email.Sender == "" {
			return fmt.Errorf("email region and sender are required when digest is enabled")
		}
	}

	return nil
}

// Location resolves the dashboard reporting timezone; empty means server local time.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Dashboard.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Dashboard.Timezone)
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func validateCron(expr string) error {
	_, err := cron.ParseStandard(expr)
	return err
}

// assetOrigin strips the path from the API URL; uploaded images are served
// from the backend origin root.
func assetOrigin(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
