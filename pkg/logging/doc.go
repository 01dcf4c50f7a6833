// Package logging provides structured logging utilities for blobpush.
//
// # Overview
//
// This package wraps the standard library slog package with blobpush defaults
// and conventions for consistent logging across all components. It supports
// environment-based log level configuration, module/version context injection,
// and automatic source location tracking for debug logs.
//
// # Features
//
//   - Structured JSON logging to stderr
//   - Optional colorized text output (charmbracelet/log) for terminals
//   - Environment-based log level configuration (LOG_LEVEL)
//   - Automatic module and version context
//   - Source location tracking for debug logs
//   - Flexible log level parsing
//   - JSON or colorized text output
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
// Installing the default logger, as the CLI does in its Before hook:
//
//	logging.SetDefaultLogger(logging.ParseFormat(format), "blobpush", version, level)
//	slog.Info("run started", "image", "myapp")
//
// Creating a logger for a specific writer:
//
//	logger := logging.NewLogger(os.Stderr, logging.FormatJSON, "blobpush", "v1.0.0", "debug")
//	logger.Debug("staged artifact", "digest", sum)
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug blobpush push myapp:latest
//	LOG_LEVEL=error blobpush publish-staged myapp
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// JSON logs are written to stderr one object per record:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "run finished",
//	    "module": "blobpush",
//	    "version": "v1.0.0",
//	    "image": "myapp"
//	}
//
// Debug logs include source location:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "DEBUG",
//	    "source": {
//	        "function": "github.com/NVIDIA/blobpush/pkg/staging.(*Stager).Stage",
//	        "file": "stager.go",
//	        "line": 112
//	    },
//	    "msg": "staged artifact",
//	    "module": "blobpush",
//	    "version": "v1.0.0"
//	}
//
// # Conventions
//
// Pipeline records carry run_id, image and step; upload records add key,
// content_type and bytes:
//
//	slog.Info("uploaded object",
//	    "key", "v2/myapp/blobs/9f86d0...",
//	    "content_type", "application/octet-stream",
//	    "bytes", 31457280,
//	)
//
// Cleanup failures are logged at WARN and never returned, so they cannot mask
// the error that failed the run.
//
// # Integration
//
// This package is used by:
//   - pkg/cli - command setup (--log-level, --log-format)
//   - pkg/pipeline - run lifecycle and cleanup logging
//   - pkg/staging - per-artifact staging logging
//   - pkg/publish - per-upload logging
//
// All components share consistent logging format and configuration.
package logging
