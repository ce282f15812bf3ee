// Package platformlog adapts *slog.Logger to corebase.Logger so
// pkg/corebase never imports log/slog directly.
package platformlog

import "log/slog"

// Adapter wraps a *slog.Logger to satisfy corebase.Logger.
type Adapter struct {
	logger *slog.Logger
}

// New builds an Adapter around logger.
func New(logger *slog.Logger) Adapter {
	return Adapter{logger: logger}
}

func (a Adapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a Adapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a Adapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
