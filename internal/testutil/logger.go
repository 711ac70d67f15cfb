// Package testutil provides small helpers shared across package tests.
package testutil

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that drops everything. Tests pass it to
// components whose log output is irrelevant to the assertion.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
