// Package logger provides structured logging for ductline using zerolog.
//
// Stream components never log per record; they log lifecycle events
// (initialize, cleanup) and failures handed to a reporter.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("stream")
//	log.Debug("stage initialized", logger.Fields("stage", "filter"))
package logger
