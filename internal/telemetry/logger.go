// Package telemetry builds the zap logger used across the orchestrator,
// ground truth byte911-tss's zap.NewDevelopment()/zap.NewProduction() split
// in byte911-tss/cmd/server/main.go.
package telemetry

import "go.uber.org/zap"

// NewLogger returns a development logger (human-readable, colorized level)
// when dev is true, else a production JSON logger.
func NewLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
