// Package logger provides structured logging for the runtime using
// zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. The shell sends all
// logs to stderr so stdout stays clean for pipeline data.
//
// # Configuration
//
//	log:
//	  level: "warn"
//	  format: "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("eval")
//	log.Debug("stage", logger.Fields("command", "par-each"))
package logger
