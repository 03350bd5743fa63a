// Package logger provides structured logging for eventstream on top of
// zerolog.
//
// Packages log through the package-level helpers with map fields:
//
//	logger.Debug("[BUS] listener attached", map[string]interface{}{
//	    "listener_id": id,
//	    "channels":    channels,
//	})
//
// The global logger is configured once via Init; NewDefault covers tests and
// standalone use.
package logger
