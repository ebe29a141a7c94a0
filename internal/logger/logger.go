// Package logger bootstraps the application-wide zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New builds a zap logger: production encoding when dev is false,
// human-readable console output otherwise.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NewNop returns a no-op logger for tests and optional dependencies.
func NewNop() *zap.Logger { return zap.NewNop() }
