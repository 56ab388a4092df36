// Package logger provides structured logging for whispersrt using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers carrying structured fields. Console colour is
// switched off automatically when the output is not a terminal.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("conversion")
//	log.Info("conversion finished", logger.Fields("units", 42))
package logger
