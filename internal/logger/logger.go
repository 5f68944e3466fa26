// Package logger provides structured logging with zap.
package logger

import "go.uber.org/zap"

// New creates a zap.Logger for the environment, tagged with the service
// name so the map and progress services can share one log pipeline.
func New(env string) *zap.Logger {
	var logger *zap.Logger
	if env == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	return logger.With(zap.String("service", "island-tracker"))
}
