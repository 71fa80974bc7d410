// Package logging constructs the process's single zap logger. The
// logger is built once in main and passed down explicitly to every
// package that needs it — no package-level global — per the Design
// Notes' preference for explicit parameters over ambient scope.
package logging

import "go.uber.org/zap"

// New builds a production zap logger (JSON encoding, info level) and
// returns its sugared form for the call-site ergonomics the rest of the
// codebase uses.
func New() (*zap.SugaredLogger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
