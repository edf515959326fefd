package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Azure  AzureConfig  `yaml:"azure"`
	Graph  GraphConfig  `yaml:"graph"`
	GeoIP  GeoIPConfig  `yaml:"geoip"`
	Report ReportConfig `yaml:"report"`

	// RolesMap is the path to the static role-id to role-name table.
	RolesMap string `yaml:"roles_map"`
}

// AzureConfig holds the app registration used to authenticate against
// the directory service.
type AzureConfig struct {
	// TenantID of the audited directory.
	TenantID string `yaml:"tenant_id"`

	// ClientID of the app registration.
	ClientID string `yaml:"client_id"`

	// ClientSecret enables the app-only client-credential flow.
	// When empty, the interactive device-code flow is used.
	ClientSecret string `yaml:"client_secret"`

	// Scopes requested for delegated access.
	Scopes []string `yaml:"scopes"`
}

func (c *AzureConfig) Validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if c.ClientSecret == "" && len(c.Scopes) == 0 {
		return fmt.Errorf("scopes are required for the device-code flow")
	}
	return nil
}

// GraphConfig holds tunables for the directory API client.
type GraphConfig struct {
	// BaseURL of the directory service.
	// Defaults to https://graph.microsoft.com.
	BaseURL string `yaml:"base_url"`

	// Timeout applied to each API call. Expiry is a transport error.
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit caps requests per second. Zero means no cap.
	RateLimit float64 `yaml:"rate_limit"`
}

// GeoIPConfig holds configuration for the geo-IP lookup collaborator.
type GeoIPConfig struct {
	// BaseURL of an ipapi-compatible endpoint.
	BaseURL string `yaml:"base_url"`

	// Enabled toggles IP enrichment in the full report.
	Enabled bool `yaml:"enabled"`
}

type ReportConfig struct {
	// OutFile is the path the rendered report is written to.
	OutFile string `yaml:"out_file"`

	// Basic disables the extended fact set (eligible roles, owned
	// objects and devices, MFA detail, transitive groups, geo/anomaly
	// enrichment).
	Basic bool `yaml:"basic"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Graph.BaseURL == "" {
		c.Graph.BaseURL = "https://graph.microsoft.com"
	}
	if c.Graph.Timeout == 0 {
		c.Graph.Timeout = 30 * time.Second
	}
	if c.GeoIP.BaseURL == "" {
		c.GeoIP.BaseURL = "https://ipapi.co"
	}
	if c.Report.OutFile == "" {
		c.Report.OutFile = "report.html"
	}
	if c.RolesMap == "" {
		c.RolesMap = "roles_map.json"
	}
}

func (c *Config) Validate() error {
	if err := c.Azure.Validate(); err != nil {
		return fmt.Errorf("validating azure section: %w", err)
	}
	if c.Graph.Timeout < 0 {
		return fmt.Errorf("graph timeout must not be negative")
	}
	if c.Graph.RateLimit < 0 {
		return fmt.Errorf("graph rate_limit must not be negative")
	}
	return nil
}
