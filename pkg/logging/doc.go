// Package logging provides structured logging configuration for mockify.
//
// This package wraps log/slog so every mockify component logs the same way.
// It supports configurable log levels and output formats, an optional JSON
// log file next to the console output, and redaction of credentials.
//
// # Usage
//
//	logger, closeLog, err := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//	defer closeLog()
//
//	logger.Info("token refreshed", "request_id", id)
//
// # Redaction
//
// Attribute values whose key names a credential (token, access_token,
// authorization, password, cookie) are replaced with "[REDACTED]" before
// they reach any handler.
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or via an
// option. If no logger is provided, use logging.Nop().
package logging
