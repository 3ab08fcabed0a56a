// Package logging constructs the zap loggers used across both binaries.
package logging

import "go.uber.org/zap"

// New builds a production zap logger, or a development one with human
// readable output when dev is true (local `go run` use).
func New(serviceName string, dev bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}
