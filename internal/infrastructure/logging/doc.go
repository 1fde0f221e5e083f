// Package logging provides structured logging for parkzone.
//
// This package wraps Go's standard log/slog package so every component
// (store, ParkTrack client, API surface, journal) logs the same way.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("zones loaded", "camera_id", 12, "count", 4)
//
// # Security
//
// Never log the ParkTrack bearer token. Use parktrack.MaskBearer when an
// Authorization header has to appear in output.
package logging
