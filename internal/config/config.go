// Package config holds the ground station daemon configuration. Config
// files are JSON; omitted fields fall back to defaults through the Get*
// accessors, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical defaults file. This is
// the single source of truth for all default daemon settings.
const DefaultConfigPath = "config/telemetry.defaults.json"

// Config represents the root daemon configuration.
type Config struct {
	// Listener params
	ListenAddr  *string `json:"listen_addr,omitempty"`
	RcvBuf      *int    `json:"rcv_buf,omitempty"`
	ReadTimeout *string `json:"read_timeout,omitempty"` // duration string like "100ms"

	// Forwarding params (optional secondary consumer)
	ForwardAddr *string `json:"forward_addr,omitempty"`
	ForwardPort *int    `json:"forward_port,omitempty"`
	LogInterval *string `json:"log_interval,omitempty"` // duration string like "60s"

	// Storage params
	DBPath  *string `json:"db_path,omitempty"`
	LogPath *string `json:"log_path,omitempty"` // raw binary flight log

	// Message type table extensions beyond the built-in set
	TypesFile *string `json:"types_file,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// Empty returns a Config with all fields set to nil. Use Load to read
// actual values from a file.
func Empty() *Config {
	return &Config{}
}

// Load loads a Config from a JSON file. The file must have a .json
// extension and be under the max file size.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.RcvBuf != nil && *c.RcvBuf < 0 {
		return fmt.Errorf("rcv_buf must be non-negative, got %d", *c.RcvBuf)
	}

	if c.ReadTimeout != nil && *c.ReadTimeout != "" {
		if _, err := time.ParseDuration(*c.ReadTimeout); err != nil {
			return fmt.Errorf("invalid read_timeout '%s': %w", *c.ReadTimeout, err)
		}
	}

	if c.LogInterval != nil && *c.LogInterval != "" {
		if _, err := time.ParseDuration(*c.LogInterval); err != nil {
			return fmt.Errorf("invalid log_interval '%s': %w", *c.LogInterval, err)
		}
	}

	if c.ForwardPort != nil {
		if *c.ForwardPort < 1 || *c.ForwardPort > 65535 {
			return fmt.Errorf("forward_port must be between 1 and 65535, got %d", *c.ForwardPort)
		}
	}

	return nil
}

// GetListenAddr returns the UDP listen address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":35001" // default
	}
	return *c.ListenAddr
}

// GetRcvBuf returns the requested kernel receive buffer size in bytes.
func (c *Config) GetRcvBuf() int {
	if c.RcvBuf == nil {
		return 0 // leave the kernel default
	}
	return *c.RcvBuf
}

// GetReadTimeout parses and returns the ReadTimeout as a time.Duration.
func (c *Config) GetReadTimeout() time.Duration {
	if c.ReadTimeout == nil || *c.ReadTimeout == "" {
		return 100 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.ReadTimeout)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

// GetLogInterval parses and returns the LogInterval as a time.Duration.
func (c *Config) GetLogInterval() time.Duration {
	if c.LogInterval == nil || *c.LogInterval == "" {
		return time.Minute // default
	}
	d, err := time.ParseDuration(*c.LogInterval)
	if err != nil {
		return time.Minute
	}
	return d
}

// GetForwardAddr returns the forwarding destination host, or "" when
// forwarding is disabled.
func (c *Config) GetForwardAddr() string {
	if c.ForwardAddr == nil {
		return ""
	}
	return *c.ForwardAddr
}

// GetForwardPort returns the forwarding destination port.
func (c *Config) GetForwardPort() int {
	if c.ForwardPort == nil {
		return 35001
	}
	return *c.ForwardPort
}

// GetDBPath returns the SQLite archive path.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "telemetry.db"
	}
	return *c.DBPath
}

// GetLogPath returns the raw flight log path, or "" when raw logging is
// disabled.
func (c *Config) GetLogPath() string {
	if c.LogPath == nil {
		return ""
	}
	return *c.LogPath
}

// GetTypesFile returns the path to an extra message type table, or ""
// when only the built-in types are used.
func (c *Config) GetTypesFile() string {
	if c.TypesFile == nil {
		return ""
	}
	return *c.TypesFile
}
