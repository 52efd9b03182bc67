// Package logging includes tests for the zap logger helpers.
package logging

import (
	"testing"

	"go.uber.org/zap"
)

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug level in development")
	}
	logger.Info("development logger ready")
}

// TestNewProductionLogger ensures the production logger configuration succeeds.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug disabled in production")
	}
	logger.Info("production logger ready")
}

// TestSetupReplacesGlobals checks the global logger is swapped and restored.
func TestSetupReplacesGlobals(t *testing.T) {
	before := zap.L()
	logger, restore, err := Setup(false)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if zap.L() != logger {
		t.Fatal("expected zap.L() to return the new logger")
	}
	restore()
	if zap.L() != before {
		t.Fatal("expected previous global logger to be restored")
	}
}
