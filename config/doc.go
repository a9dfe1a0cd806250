// Package config loads application configuration.
//
// LoadConfig reads a config.yml found next to the service (or given
// explicitly), loads a matching .env file, and lets environment variables
// override file values: CONTAINER_DUPLICATE_POLICY sets
// container.duplicate_policy.
//
//	var cfg AppConfig
//	if err := config.LoadConfig("greeter", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
