package config

import "fmt"

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path is required")
	}

	if serve := c.GetServeConfig(); serve.Port < 1 || serve.Port > 65535 {
		return fmt.Errorf("serve port %d is out of range (1-65535)", serve.Port)
	}

	dues := c.GetDues()
	if dues.Water < 0 || dues.Security < 0 || dues.Sanitation < 0 {
		return fmt.Errorf("dues must not be negative")
	}

	return nil
}
