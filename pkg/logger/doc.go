// Package logger provides a structured logging interface for the scraper.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output alongside the console
// - Global logger instance for easy access
// - An in-memory TestLogger for asserting on log output in tests
//
// Basic Usage:
//
//	import "xscraper/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "/var/log/xscraper.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	log := logger.GetLogger()
//	log.Info("collection started")
//	log.WithField("username", "some_account").Info("profile resolved")
//	log.WithError(err).Error("scroll step failed")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "engine").
//	    WithField("query", spec.Query)
//
//	// Use structured logging
//	log.InfoWithFields("pass finished", map[string]interface{}{
//	    "collected":  12,
//	    "duplicates": 4,
//	    "pass":       3,
//	})
//
// The logger supports the following configuration options:
// - Level: Log level (debug, info, warn, error, fatal)
// - File: Path to log file (empty for console only)
package logger
