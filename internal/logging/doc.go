// Package logging provides structured logging for the LexAI client.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation. The terminal belongs to the TUI, so logs always go to
// a file in the data directory (or are discarded); they are the diagnostic
// channel that write-view failures are reported to.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (view, user, arbitrary attributes)
//   - Size-based rotation with optional gzip compression (lumberjack)
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers created
// via With* methods share the underlying writer.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/data", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("session restored", "user", user.Email)
//
// # Context Propagation
//
//	screenLogger := logger.WithView("new-case")
//	screenLogger.Error("create case failed", "error", err)
//
// Output:
//
//	{"time":"...","level":"ERROR","msg":"create case failed","view":"new-case","error":"..."}
//
// # Log Rotation
//
//	config := logging.RotationConfig{
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	    Compress:   true,
//	}
//	logger, err := logging.NewLoggerWithRotation("/path/to/data", "INFO", config)
//
// Rotated files are kept next to lexai.log with a timestamp suffix, which is
// lumberjack's naming scheme.
//
// # Testing
//
// Use [NopLogger] to discard all output, or [NewWriterLogger] to capture it:
//
//	var buf bytes.Buffer
//	logger := logging.NewWriterLogger(&buf, logging.LevelDebug)
package logging
