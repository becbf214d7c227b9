// Package logger builds the zap logger shared by the texture core's
// components. Components never construct loggers themselves; the caller
// builds one here and passes Named sub-loggers down explicitly.
package logger

import (
	"go.uber.org/zap"
)

// New returns a production zap logger at the given verbosity
// ("debug", "info", "warn", "error").
func New(verbosity string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	return config.Build()
}
