package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/repositories"
	"github.com/desertthunder/roastify/internal/shared"
	tu "github.com/desertthunder/roastify/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			store := repositories.NewMemoryStore()
			auth := &tu.MockAuthorizer{}
			spotify := tu.NewMockTrackFetcher(nil)
			generator := &tu.MockGenerator{}

			runner := NewRunner(RunnerOpts{
				Config:    config,
				Logger:    logger,
				Output:    output,
				Store:     store,
				Auth:      auth,
				Spotify:   spotify,
				Generator: generator,
				Lister:    generator,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
			if runner.auth != auth {
				t.Error("expected auth to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
			if runner.generator != generator || runner.lister != generator {
				t.Error("expected generator and lister to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output and input uses stdio", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})

		t.Run("with zero login timeout uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.loginTimeout != defaultLoginTimeout {
				t.Errorf("expected %s, got %s", defaultLoginTimeout, runner.loginTimeout)
			}
			if runner.browser == nil {
				t.Error("expected browser opener to be set")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("prepare", func(t *testing.T) {
		t.Run("ephemeral builds services and loads session", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = "client-123"
			runner := NewRunner(RunnerOpts{Config: config, Logger: quietLogger()})
			runner.ephemeral = true

			if err := runner.prepare(context.Background()); err != nil {
				t.Fatalf("prepare() error = %v", err)
			}
			defer runner.Close()

			if runner.session == nil || runner.store == nil {
				t.Fatal("expected session and store to be set")
			}
			if runner.db != nil {
				t.Error("expected no database for an ephemeral runner")
			}
			if runner.auth == nil || runner.spotify == nil || runner.generator == nil || runner.lister == nil {
				t.Error("expected all services to be built")
			}
			if runner.session.LoggedIn() {
				t.Error("expected a fresh session to be logged out")
			}
		})

		t.Run("missing client id leaves login unavailable", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: quietLogger()})
			runner.ephemeral = true

			if err := runner.prepare(context.Background()); err != nil {
				t.Fatalf("prepare() error = %v", err)
			}
			if runner.auth != nil {
				t.Error("expected no authorizer without a client id")
			}
		})

		t.Run("configured api key is stored", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Gemini.APIKey = "from-config"
			store := repositories.NewMemoryStore()
			runner := NewRunner(RunnerOpts{Config: config, Store: store, Logger: quietLogger()})

			if err := runner.prepare(context.Background()); err != nil {
				t.Fatalf("prepare() error = %v", err)
			}

			got, ok, _ := store.Get(models.KeyGeminiAPIKey)
			if !ok || got != "from-config" {
				t.Errorf("expected configured key to be stored, got %q (present=%v)", got, ok)
			}
		})

		t.Run("stored api key wins over config", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Gemini.APIKey = "from-config"
			store := repositories.NewMemoryStore()
			store.Set(models.KeyGeminiAPIKey, "stored")
			runner := NewRunner(RunnerOpts{Config: config, Store: store, Logger: quietLogger()})

			if err := runner.prepare(context.Background()); err != nil {
				t.Fatalf("prepare() error = %v", err)
			}

			if got, _, _ := store.Get(models.KeyGeminiAPIKey); got != "stored" {
				t.Errorf("expected stored key to be kept, got %q", got)
			}
		})

		t.Run("database store is migrated", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = t.TempDir() + "/roastify.db"
			runner := NewRunner(RunnerOpts{Config: config, Logger: quietLogger()})

			if err := runner.prepare(context.Background()); err != nil {
				t.Fatalf("prepare() error = %v", err)
			}
			if runner.db == nil {
				t.Fatal("expected a database connection")
			}
			if err := runner.store.Set(models.KeySpotifyToken, "tok"); err != nil {
				t.Errorf("expected store to accept writes: %v", err)
			}
			if err := runner.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
			if runner.db != nil {
				t.Error("expected db to be released")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)

			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("next"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\nnext\n" {
				t.Errorf("expected surrounding newlines, got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")

			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("fail prints the user message", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		err := runner.fail(shared.ErrTokenExpired)

		if err != shared.ErrTokenExpired {
			t.Errorf("expected the error to be returned, got %v", err)
		}
		if output.String() != "✗ Session expired. Please login again.\n" {
			t.Errorf("unexpected output %q", output.String())
		}
		if runner.fail(nil) != nil {
			t.Error("expected nil for nil error")
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := make(map[string]bool)
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "login", "logout", "status", "key", "roast", "models", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("loginTimeout option", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{LoginTimeout: time.Second})
		if runner.loginTimeout != time.Second {
			t.Errorf("expected 1s, got %s", runner.loginTimeout)
		}
	})
}
