// Package config provides configuration loading and management for the app store server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kosher-appstore/appstore-server/internal/telemetry"
)

// EnvPrefix is the prefix used for environment variable overrides
const EnvPrefix = "APPSTORE"

const (
	// DefaultTokenTTL is how long a download token stays valid
	DefaultTokenTTL = 300 * time.Second

	// DefaultMetadataTimeout bounds every provider metadata call
	DefaultMetadataTimeout = 10 * time.Second

	// DefaultVerifyTimeout bounds provider HEAD liveness checks
	DefaultVerifyTimeout = 5 * time.Second

	// DefaultOriginTimeout bounds the proxy's origin fetch
	DefaultOriginTimeout = 60 * time.Second

	// DefaultBufferSize is the copy buffer used while streaming a binary
	DefaultBufferSize = 32 * 1024

	// DefaultMaxConcurrentDownloads caps simultaneous proxied streams
	DefaultMaxConcurrentDownloads = 64

	// DefaultUserAgent is sent on every outbound request to mirrors and origins
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// DefaultPlayStoreURL is the catalog page base used by the metadata-only provider
	DefaultPlayStoreURL = "https://play.google.com"

	// DefaultPublicBaseURL is used to build client download links
	DefaultPublicBaseURL = "http://localhost:8080"

	minMetadataTimeout = 5 * time.Second
	maxMetadataTimeout = 10 * time.Second
)

// DefaultAllowedDomains is the allow-list used when none is configured.
// play.google.com is listed so the catalog page provider can reach its source.
var DefaultAllowedDomains = []string{
	"play.google.com",
	"apkmirror.com",
	"www.apkmirror.com",
	"apkpure.com",
	"www.apkpure.com",
	"mirror.example.com",
}

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure.
// It is built once at process start and must not be mutated afterwards.
type Config struct {
	Security  SecurityConfig    `yaml:"security"`
	Sources   SourcesConfig     `yaml:"sources"`
	Download  DownloadConfig    `yaml:"download"`
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	Auth      *AuthConfig       `yaml:"auth,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// SecurityConfig holds token signing and outbound host restrictions
type SecurityConfig struct {
	// SigningSecretFile is the path to a file holding the HMAC signing secret.
	// Falls back to the APPSTORE_SIGNING_SECRET environment variable.
	SigningSecretFile string `yaml:"signingSecretFile,omitempty"`

	// TokenTTL is how long an issued download token stays valid (e.g. "300s")
	TokenTTL string `yaml:"tokenTTL,omitempty"`

	// AllowedDomains is the domain allow-list for outbound fetches and served URLs
	AllowedDomains []string `yaml:"allowedDomains,omitempty"`
}

// SourcesConfig holds settings shared by every source provider
type SourcesConfig struct {
	UserAgent       string `yaml:"userAgent,omitempty"`
	MetadataTimeout string `yaml:"metadataTimeout,omitempty"`
	VerifyTimeout   string `yaml:"verifyTimeout,omitempty"`

	// PlayStoreURL is the base URL of the metadata-only catalog page provider
	PlayStoreURL string `yaml:"playStoreURL,omitempty"`
}

// DownloadConfig holds settings for the download proxy
type DownloadConfig struct {
	OriginTimeout string `yaml:"originTimeout,omitempty"`
	BufferSize    int    `yaml:"bufferSize,omitempty"`

	// MaxConcurrent caps simultaneous proxied streams; a negative value disables the cap
	MaxConcurrent int `yaml:"maxConcurrent,omitempty"`

	// PublicBaseURL is prefixed to /api/downloads/{token} when handing links to clients
	PublicBaseURL string `yaml:"publicBaseURL,omitempty"`
}

// AuthConfig configures bearer-token authentication for the admin API
type AuthConfig struct {
	// JWTSecretFile is the path to the HS256 secret used to verify admin tokens.
	// Falls back to the APPSTORE_ADMIN_JWT_SECRET environment variable.
	JWTSecretFile string `yaml:"jwtSecretFile,omitempty"`

	// Issuer, when set, must match the iss claim of admin tokens
	Issuer string `yaml:"issuer,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the minimum number of idle connections kept in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if _, err := parseDuration(c.Security.TokenTTL, DefaultTokenTTL); err != nil {
		return fmt.Errorf("security.tokenTTL: %w", err)
	}
	for i, d := range c.Security.AllowedDomains {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("security.allowedDomains[%d]: domain cannot be empty", i)
		}
		if strings.ContainsAny(d, "/:") {
			return fmt.Errorf("security.allowedDomains[%d]: %q must be a bare hostname", i, d)
		}
	}

	metadataTimeout, err := parseDuration(c.Sources.MetadataTimeout, DefaultMetadataTimeout)
	if err != nil {
		return fmt.Errorf("sources.metadataTimeout: %w", err)
	}
	if metadataTimeout < minMetadataTimeout || metadataTimeout > maxMetadataTimeout {
		return fmt.Errorf("sources.metadataTimeout must be between %s and %s, got %s",
			minMetadataTimeout, maxMetadataTimeout, metadataTimeout)
	}
	if _, err := parseDuration(c.Sources.VerifyTimeout, DefaultVerifyTimeout); err != nil {
		return fmt.Errorf("sources.verifyTimeout: %w", err)
	}
	if c.Sources.PlayStoreURL != "" {
		if err := validateHTTPURL(c.Sources.PlayStoreURL); err != nil {
			return fmt.Errorf("sources.playStoreURL: %w", err)
		}
	}

	originTimeout, err := parseDuration(c.Download.OriginTimeout, DefaultOriginTimeout)
	if err != nil {
		return fmt.Errorf("download.originTimeout: %w", err)
	}
	if originTimeout > DefaultOriginTimeout {
		return fmt.Errorf("download.originTimeout must not exceed %s, got %s", DefaultOriginTimeout, originTimeout)
	}
	if c.Download.BufferSize < 0 {
		return fmt.Errorf("download.bufferSize must not be negative")
	}
	if c.Download.PublicBaseURL != "" {
		if err := validateHTTPURL(c.Download.PublicBaseURL); err != nil {
			return fmt.Errorf("download.publicBaseURL: %w", err)
		}
	}

	if c.Database != nil {
		if c.Database.ConnMaxLifetime != "" {
			if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
				return fmt.Errorf("database.connMaxLifetime: %w", err)
			}
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

// GetTokenTTL returns the configured token TTL or the default
func (c *Config) GetTokenTTL() time.Duration {
	d, _ := parseDuration(c.Security.TokenTTL, DefaultTokenTTL)
	return d
}

// GetAllowedDomains returns the configured allow-list or the default one
func (c *Config) GetAllowedDomains() []string {
	if len(c.Security.AllowedDomains) == 0 {
		return DefaultAllowedDomains
	}
	return c.Security.AllowedDomains
}

// GetSigningSecret returns the token signing secret using the following priority:
// 1. Read from SigningSecretFile if specified
// 2. Read from APPSTORE_SIGNING_SECRET environment variable
func (c *Config) GetSigningSecret() ([]byte, error) {
	secret, err := readSecret(c.Security.SigningSecretFile, EnvPrefix+"_SIGNING_SECRET")
	if err != nil {
		return nil, fmt.Errorf("no signing secret configured: %w", err)
	}
	return []byte(secret), nil
}

// GetUserAgent returns the outbound User-Agent header value
func (c *Config) GetUserAgent() string {
	if c.Sources.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.Sources.UserAgent
}

// GetMetadataTimeout returns the provider metadata call timeout
func (c *Config) GetMetadataTimeout() time.Duration {
	d, _ := parseDuration(c.Sources.MetadataTimeout, DefaultMetadataTimeout)
	return d
}

// GetVerifyTimeout returns the provider HEAD check timeout
func (c *Config) GetVerifyTimeout() time.Duration {
	d, _ := parseDuration(c.Sources.VerifyTimeout, DefaultVerifyTimeout)
	return d
}

// GetPlayStoreURL returns the metadata-only provider base URL
func (c *Config) GetPlayStoreURL() string {
	if c.Sources.PlayStoreURL == "" {
		return DefaultPlayStoreURL
	}
	return strings.TrimSuffix(c.Sources.PlayStoreURL, "/")
}

// GetOriginTimeout returns the proxy origin fetch timeout
func (c *Config) GetOriginTimeout() time.Duration {
	d, _ := parseDuration(c.Download.OriginTimeout, DefaultOriginTimeout)
	return d
}

// GetBufferSize returns the streaming copy buffer size
func (c *Config) GetBufferSize() int {
	if c.Download.BufferSize == 0 {
		return DefaultBufferSize
	}
	return c.Download.BufferSize
}

// GetMaxConcurrentDownloads returns the stream cap; zero means unbounded
func (c *Config) GetMaxConcurrentDownloads() int {
	switch {
	case c.Download.MaxConcurrent < 0:
		return 0
	case c.Download.MaxConcurrent == 0:
		return DefaultMaxConcurrentDownloads
	default:
		return c.Download.MaxConcurrent
	}
}

// GetPublicBaseURL returns the externally reachable base URL without a trailing slash
func (c *Config) GetPublicBaseURL() string {
	if c.Download.PublicBaseURL == "" {
		return DefaultPublicBaseURL
	}
	return strings.TrimSuffix(c.Download.PublicBaseURL, "/")
}

// GetJWTSecret returns the admin JWT secret using the following priority:
// 1. Read from JWTSecretFile if specified
// 2. Read from APPSTORE_ADMIN_JWT_SECRET environment variable
func (a *AuthConfig) GetJWTSecret() ([]byte, error) {
	secret, err := readSecret(a.JWTSecretFile, EnvPrefix+"_ADMIN_JWT_SECRET")
	if err != nil {
		return nil, fmt.Errorf("no admin JWT secret configured: %w", err)
	}
	return []byte(secret), nil
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from APPSTORE_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	password, err := readSecret(d.PasswordFile, EnvPrefix+"_DATABASE_PASSWORD")
	if err != nil {
		return "", fmt.Errorf("no database password configured: %w", err)
	}
	return password, nil
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

// readSecret reads a secret from a file, falling back to an environment variable
func readSecret(path, envVar string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("failed to read secret from file %s: %w", path, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", path)
		}
		return secret, nil
	}

	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}

	return "", fmt.Errorf("set a secret file or the %s environment variable", envVar)
}

func parseDuration(value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("must be a valid duration (e.g., '30s', '5m'): %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
