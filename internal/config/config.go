// Package config loads the query service configuration from config.yml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/passbi/transport_catalogue/internal/models"
	"gopkg.in/yaml.v3"
)

// Network sources
const (
	SourceDocument = "document"
	SourcePostgres = "postgres"
)

// DefaultPaths are searched in order when no path is given
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

var ErrNoConfigFile = errors.New("no config file found")

// AppConfig is the query service configuration
type AppConfig struct {
	Server    ServerConfig           `yaml:"server"`
	Network   NetworkConfig          `yaml:"network"`
	Routing   models.RoutingSettings `yaml:"routing"`
	Cache     CacheConfig            `yaml:"cache"`
	RateLimit RateLimitConfig        `yaml:"rate_limit"`
	Auth      AuthConfig             `yaml:"auth"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port         int    `yaml:"port" validate:"gte=0,lte=65535"`
	AllowOrigins string `yaml:"allow_origins"`
}

// NetworkConfig tells where the transit network is loaded from
type NetworkConfig struct {
	Source       string `yaml:"source" validate:"oneof=document postgres"`
	DocumentPath string `yaml:"document_path" validate:"required_if=Source document"`
	// RejectDuplicates refuses repeated stop names and bus numbers instead of shadowing them
	RejectDuplicates bool `yaml:"reject_duplicates"`
}

// CacheConfig configures the Redis response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`
}

// RateLimitConfig configures the per-client request limit
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second" validate:"gte=0"`
	RequestsPerDay    int  `yaml:"requests_per_day" validate:"gte=0"`
}

// AuthConfig lists the API keys accepted on /v1, as SHA-256 hex digests
type AuthConfig struct {
	Enabled   bool     `yaml:"enabled"`
	KeyHashes []string `yaml:"key_hashes" validate:"required_if=Enabled true,dive,len=64,hexadecimal"`
}

// Default returns the configuration used for missing keys
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port:         8080,
			AllowOrigins: "*",
		},
		Network: NetworkConfig{
			Source: SourceDocument,
		},
		Routing: models.RoutingSettings{
			BusWaitTime: 6,
			BusVelocity: 40,
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
		},
	}
}

// Load reads the first existing file among paths (DefaultPaths when empty),
// applies environment overrides and validates the result
func Load(paths ...string) (*AppConfig, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}

	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConfigFile, err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults, applies environment overrides and validates the result
func Parse(data []byte) (*AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv overrides file values with API_PORT, NETWORK_SOURCE and DOCUMENT_PATH
func (c *AppConfig) applyEnv() error {
	if port := os.Getenv("API_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid API_PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	if source := os.Getenv("NETWORK_SOURCE"); source != "" {
		c.Network.Source = source
	}
	if path := os.Getenv("DOCUMENT_PATH"); path != "" {
		c.Network.DocumentPath = path
	}
	return nil
}
