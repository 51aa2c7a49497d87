// Package logger provides structured logging for riv using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. Every pipeline stage receives a logger
// tagged with its component name and id.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.WithComponent("sink.csv")
//	log.Info("sink opened", logger.Fields(logger.FieldPath, path))
package logger
