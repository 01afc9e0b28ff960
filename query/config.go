package query

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/querykit/errors"
)

// Config tunes the batch scheduler and the outbound fetch path.
type Config struct {
	// ChunkSize is how many uncached queries form one chunk.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`

	// MaxConcurrent bounds simultaneous fetches within a chunk.
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent"`

	// ChunkDelay is the pause between consecutive chunks.
	ChunkDelay time.Duration `yaml:"chunk_delay" json:"chunk_delay"`

	// FetchRate optionally caps outbound fetches per second across the
	// whole layer. Zero disables rate limiting.
	FetchRate float64 `yaml:"fetch_rate" json:"fetch_rate"`

	// FetchBurst is the rate limiter burst size; only meaningful when
	// FetchRate is set.
	FetchBurst int `yaml:"fetch_burst" json:"fetch_burst"`
}

// DefaultConfig returns the stock scheduler tuning.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = 6
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 3
	}
	if c.ChunkDelay == 0 {
		c.ChunkDelay = 50 * time.Millisecond
	}
	if c.FetchRate > 0 && c.FetchBurst == 0 {
		c.FetchBurst = 1
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.ChunkSize < 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("chunk_size must be >= 1, got %d", c.ChunkSize))
	}
	if c.MaxConcurrent < 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("max_concurrent must be >= 1, got %d", c.MaxConcurrent))
	}
	if c.ChunkDelay < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"chunk_delay cannot be negative")
	}
	if c.FetchRate < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"fetch_rate cannot be negative")
	}
	if c.FetchBurst < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"fetch_burst cannot be negative")
	}
	return nil
}

// UnmarshalYAML decodes the config, accepting chunk_delay as a Go
// duration string ("50ms") since yaml.v3 has no native duration support.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ChunkSize     int     `yaml:"chunk_size"`
		MaxConcurrent int     `yaml:"max_concurrent"`
		ChunkDelay    string  `yaml:"chunk_delay"`
		FetchRate     float64 `yaml:"fetch_rate"`
		FetchBurst    int     `yaml:"fetch_burst"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.ChunkSize = raw.ChunkSize
	c.MaxConcurrent = raw.MaxConcurrent
	c.FetchRate = raw.FetchRate
	c.FetchBurst = raw.FetchBurst

	if raw.ChunkDelay != "" {
		d, err := time.ParseDuration(raw.ChunkDelay)
		if err != nil {
			return fmt.Errorf("chunk_delay: %w", err)
		}
		c.ChunkDelay = d
	}
	return nil
}

// LoadConfig reads a YAML config file, applies defaults, and validates.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WrapInvalid(err, "Config", "LoadConfig", "read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.WrapInvalid(err, "Config", "LoadConfig", "parse config file")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
