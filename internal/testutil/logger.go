// Package testutil holds the fakes and helpers shared by the package test
// suites.
package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards everything, for wiring
// components in tests without log noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
