// Package config loads and validates the configuration of ductline
// processes.
//
// Configuration is read with Viper from a YAML file, then overridden by
// environment variables carrying the DUCTLINE_ prefix; a .env file, when
// found, is loaded into the environment first.
//
//	cfg, err := config.Load("orders")
//
// DUCTLINE_ERROR_POLICY=fail-fast sets error_policy and
// DUCTLINE_METRICS_ENDPOINT sets metrics.endpoint. Loaded configuration is
// validated with the validation package.
package config
