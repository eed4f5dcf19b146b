// Package logging provides structured logging for the pressure logger.
//
// It wraps log/slog so every component logs through the same handler with
// the same default fields (service, version).
//
// Configuration:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log the InfluxDB token or MQTT password.
package logging
