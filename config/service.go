package config

import (
	"github.com/kbukum/ductline/logger"
	"github.com/kbukum/ductline/validation"
	"github.com/kbukum/ductline/version"
)

// Environments a service may run in.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig contains the fields every ductline process needs.
// Projects extend it by embedding it in their own config structs:
//
//	type IngestConfig struct {
//	    config.StreamConfig `yaml:",inline" mapstructure:",squash"`
//	    Source SourceConfig `yaml:"source" mapstructure:"source"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig. The method is promoted
// to embedding structs.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	v := validation.New()
	v.Required("name", c.Name)
	v.Custom(c.Environment != "", "environment", "is required")
	v.OneOf("environment", c.Environment, Environments)
	v.Merge("logging", c.Logging.Validate())
	return v.Validate()
}

// NewLogger builds the service logger from the logging section.
func (c *ServiceConfig) NewLogger() *logger.Logger {
	cfg := c.Logging
	cfg.ApplyDefaults()
	return logger.New(&cfg, c.Name)
}
