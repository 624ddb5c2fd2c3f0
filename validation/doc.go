// Package validation validates configuration structs.
//
// Struct tag validation uses the go-playground validator; fields are
// reported by their mapstructure key:
//
//	type MetricsConfig struct {
//	    Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
//	}
//	err := validation.Validate(cfg)
//
// Checks that tags cannot express are collected programmatically:
//
//	v := validation.New()
//	v.OneOf("environment", cfg.Environment, environments)
//	err := v.Validate()
//
// Both return a single INVALID_CONFIG error carrying every field error.
package validation
