package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
		if !strings.Contains(buf.String(), "key=value") {
			t.Errorf("expected log output to contain key/value, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.InfoLevel)
		logger.Debug("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected debug to be filtered, got %q", buf.String())
		}

		SetLogLevel(logger, log.DebugLevel)
		logger.Debug("shown")
		if !strings.Contains(buf.String(), "shown") {
			t.Errorf("expected debug output, got %q", buf.String())
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "gemini")
		logger.Info("attempt")

		if !strings.Contains(buf.String(), "component=gemini") {
			t.Errorf("expected component field, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "roastify.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("to file")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "to file") {
			t.Errorf("expected log file to contain message, got %q", string(data))
		}
	})
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}

	if a == "" || a == b {
		t.Errorf("expected distinct non-empty states, got %q and %q", a, b)
	}
}
