// Package logging provides structured logging utilities for amctl.
//
// # Overview
//
// This package wraps the standard library slog package with amctl defaults:
// JSON records on stderr, LOG_LEVEL based level selection, module/version
// attributes on every record, and source locations for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLoggerWithLevel("amctl", version, "info")
//	    slog.Info("registry ready", "repository", "apigee-monitor")
//	}
//
// Pipelines log one record per step with the run id, step name and duration;
// remote tool output (gcloud, helm) is streamed to stderr unmodified.
package logging
