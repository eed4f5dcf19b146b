// Package config handles loading and validating pressure logger configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The InfluxDB token and MQTT password should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Configuration is loaded once at startup and passed explicitly to the
// components that need it; nothing reads it from package state.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.CSV.Path)
package config
