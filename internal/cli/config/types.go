// Package config provides configuration management for the townledger CLI.
//
// Configuration is loaded from townledger.yaml, environment variables
// prefixed with TOWNLEDGER_, and command-line flags, in increasing
// order of precedence.
package config

// DuesConfig holds the default monthly charge per service, in rupees.
type DuesConfig struct {
	Water      int64 `koanf:"water"`
	Security   int64 `koanf:"security"`
	Sanitation int64 `koanf:"sanitation"`
}

// ServeConfig holds configuration for the web portal server.
type ServeConfig struct {
	Port     int  `koanf:"port"`
	AutoOpen bool `koanf:"auto_open"`
	Watch    bool `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	Database      string       `koanf:"database"`
	SessionSecret string       `koanf:"session_secret"`
	Verbose       bool         `koanf:"verbose"`
	Dues          *DuesConfig  `koanf:"dues"`
	Streets       []string     `koanf:"streets"`
	Serve         *ServeConfig `koanf:"serve"`
}

// Default configuration values.
const (
	DefaultDatabase = "townledger.db"
	DefaultPort     = 8742

	DefaultWaterDue      = 500
	DefaultSecurityDue   = 500
	DefaultSanitationDue = 1000
)

// DefaultServeConfig returns a ServeConfig with default values.
func DefaultServeConfig() *ServeConfig {
	return &ServeConfig{
		Port:     DefaultPort,
		AutoOpen: true,
		Watch:    true,
	}
}

// GetServeConfig returns the serve config with defaults applied for any
// unset values.
func (c *Config) GetServeConfig() *ServeConfig {
	if c.Serve == nil {
		return DefaultServeConfig()
	}
	serve := c.Serve
	if serve.Port == 0 {
		serve.Port = DefaultPort
	}
	return serve
}

// GetDues returns the dues config with defaults applied for any unset
// values.
func (c *Config) GetDues() DuesConfig {
	if c.Dues == nil {
		return DuesConfig{
			Water:      DefaultWaterDue,
			Security:   DefaultSecurityDue,
			Sanitation: DefaultSanitationDue,
		}
	}
	return *c.Dues
}
