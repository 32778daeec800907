package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/repositories"
	"github.com/desertthunder/roastify/internal/services"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/desertthunder/roastify/internal/tasks"
	"github.com/urfave/cli/v3"
)

const (
	defaultLoginTimeout = 2 * time.Minute
	progressBuffer      = 8
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	configPath   string
	store        models.KeyValueStore
	auth         services.Authorizer
	spotify      services.TrackFetcher
	generator    services.RoastGenerator
	lister       services.ModelLister
	session      *tasks.Session
	progress     chan tasks.ProgressUpdate
	db           *sql.DB
	logger       *log.Logger
	output       io.Writer
	input        io.Reader
	browser      func(url string) error
	loginTimeout time.Duration
	callbackAddr string
	ephemeral    bool
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Dependencies left nil are built from the config when a command runs.
type RunnerOpts struct {
	Config       *shared.Config
	ConfigPath   string
	Store        models.KeyValueStore
	Auth         services.Authorizer
	Spotify      services.TrackFetcher
	Generator    services.RoastGenerator
	Lister       services.ModelLister
	Logger       *log.Logger
	Output       io.Writer
	Input        io.Reader
	Browser      func(url string) error
	LoginTimeout time.Duration
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Browser == nil {
		opts.Browser = shared.OpenBrowser
	}
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = defaultLoginTimeout
	}

	return &Runner{
		config:       opts.Config,
		configPath:   opts.ConfigPath,
		store:        opts.Store,
		auth:         opts.Auth,
		spotify:      opts.Spotify,
		generator:    opts.Generator,
		lister:       opts.Lister,
		logger:       opts.Logger,
		output:       opts.Output,
		input:        opts.Input,
		browser:      opts.Browser,
		loginTimeout: opts.LoginTimeout,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, logoutCommand, statusCommand, keyCommand, roastCommand, modelsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies the global flags and loads the configuration named by --config.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.ephemeral = cmd.Bool("ephemeral")

	if path := cmd.String("config"); path != "" {
		r.configPath = path
		config, err := shared.LoadConfigOrDefault(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}
	shared.ApplyEnv(r.config)

	return ctx, nil
}

// After releases the database connection.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// prepare fills in the dependencies that were not injected and loads the session.
//
// An ephemeral runner keeps its state in memory and forgets it on exit.
func (r *Runner) prepare(ctx context.Context) error {
	if r.session != nil {
		return nil
	}

	if r.store == nil {
		if r.ephemeral {
			r.store = repositories.NewMemoryStore()
		} else {
			db, err := shared.OpenDatabase(r.config.Database)
			if err != nil {
				return err
			}
			r.db = db
			r.store = repositories.NewStateRepository(db)
		}
	}

	timeout := r.config.HTTP.ClientTimeout()

	if r.generator == nil || r.lister == nil {
		gemini := services.NewGeminiService(r.config.Credentials.Gemini, timeout, r.logger)
		if r.generator == nil {
			r.generator = gemini
		}
		if r.lister == nil {
			r.lister = gemini
		}
	}

	if r.spotify == nil {
		r.spotify = services.NewSpotifyService(services.WithTimeout(timeout))
	}

	if r.auth == nil {
		auth, err := services.NewSpotifyAuth(r.config.Credentials.Spotify, r.store)
		if err != nil {
			r.logger.Debug("login unavailable", "error", err)
		} else {
			r.auth = auth
		}
	}

	r.progress = make(chan tasks.ProgressUpdate, progressBuffer)

	session, err := tasks.NewSession(tasks.SessionOpts{
		Store:     r.store,
		Auth:      r.auth,
		Spotify:   r.spotify,
		Generator: r.generator,
		Logger:    r.logger,
		Progress:  r.progress,
	})
	if err != nil {
		return err
	}

	if err := session.Init(ctx); err != nil {
		return err
	}

	if key := r.config.Credentials.Gemini.APIKey; key != "" && !session.HasCredential() {
		if err := session.SetCredential(key); err != nil {
			return fmt.Errorf("failed to store configured API key: %w", err)
		}
	}

	r.session = session
	return nil
}

// Close releases the database connection, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// SetLogger replaces the logger used by the runner.
//
// Call before [Runner.prepare] so the services and session pick it up.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// fail prints the user-facing explanation of err and returns err for the exit status.
func (r *Runner) fail(err error) error {
	if err == nil {
		return nil
	}
	if msg := tasks.UserMessage(err); msg != "" {
		r.writePlain("✗ %s\n", msg)
	}
	return err
}

// drainProgress discards queued progress updates left over from earlier steps.
func (r *Runner) drainProgress() {
	for {
		select {
		case <-r.progress:
		default:
			return
		}
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

