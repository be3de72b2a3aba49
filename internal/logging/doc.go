// Package logging provides structured logging for the wifid daemon.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the daemon. It provides both general logging
// functions and specialized functions for radio and control API logging.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (driver calls, waiter accounting)
//   - Info: Normal operations (mode changes, radio events, API requests)
//   - Warn: Non-fatal issues (hostname not applied, connection drops)
//   - Error: Fatal issues (startup failures, driver errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("WiFi STA: connecting",
//	    zap.String("ssid", "net1"),
//	)
//
// # Configuration
//
// Initialize logging at daemon startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// CLI commands should use InitializeFromEnv, which is silent unless
// WIFID_LOG_LEVEL is set.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
