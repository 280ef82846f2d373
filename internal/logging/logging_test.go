package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewHonorsLevel(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := New("WARN", format)
		if err != nil {
			t.Fatalf("New(%s) returned error: %v", format, err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("%s: info should be disabled at warn", format)
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Fatalf("%s: error should be enabled at warn", format)
		}
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("loud", "console"); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatalf("expected error for bad format")
	}
}

func TestValidLevel(t *testing.T) {
	for level, want := range map[string]bool{
		"debug": true,
		"WARN":  true,
		"error": true,
		"bogus": false,
	} {
		if got := ValidLevel(level); got != want {
			t.Fatalf("ValidLevel(%q) = %v, want %v", level, got, want)
		}
	}
}
