// Package logger provides structured logging using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. The container, the
// bootstrap layer and registry discovery all log through it.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Info("table sealed", logger.Fields("count", 12))
package logger
