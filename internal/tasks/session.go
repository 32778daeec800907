package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/server"
	"github.com/desertthunder/roastify/internal/services"
	"github.com/desertthunder/roastify/internal/shared"
)

// SessionOpts holds the dependencies of a [Session].
type SessionOpts struct {
	Store     models.KeyValueStore    // required
	Auth      services.Authorizer     // needed for login only
	Spotify   services.TrackFetcher   // needed for roasts
	Generator services.RoastGenerator // needed for roasts
	Logger    *log.Logger
	Progress  chan<- ProgressUpdate // optional; updates are dropped when full
}

// Session is the application controller. It is safe for concurrent use.
type Session struct {
	store     models.KeyValueStore
	auth      services.Authorizer
	spotify   services.TrackFetcher
	generator services.RoastGenerator
	logger    *log.Logger
	progress  chan<- ProgressUpdate

	mu         sync.Mutex
	state      State
	token      string
	credential string
	inFlight   bool
	last       *models.RoastResult
}

// NewSession creates a [Session]. Call [Session.Init] to load persisted state.
func NewSession(opts SessionOpts) (*Session, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", shared.ErrInvalidArgument)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &Session{
		store:     opts.Store,
		auth:      opts.Auth,
		spotify:   opts.Spotify,
		generator: opts.Generator,
		logger:    shared.WithLogger(logger, "component", "session"),
		progress:  opts.Progress,
	}, nil
}

// Init reads the stored token and credential.
func (s *Session) Init(ctx context.Context) error {
	token, _, err := s.store.Get(models.KeySpotifyToken)
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	credential, _, err := s.store.Get(models.KeyGeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to load credential: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.credential = credential
	s.state = Idle
	s.mu.Unlock()

	s.logger.Debug("session loaded", "logged_in", token != "", "has_credential", credential != "")
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoggedIn reports whether an access token is held.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// HasCredential reports whether a Gemini API key is held.
func (s *Session) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential != ""
}

// Last returns the result of the most recent successful roast, if any.
func (s *Session) Last() *models.RoastResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// BeginLogin starts the authorization flow and returns the authorize URL and the state token the
// callback must echo.
func (s *Session) BeginLogin(ctx context.Context) (authURL, state string, err error) {
	if s.auth == nil {
		return "", "", fmt.Errorf("%w: no authorizer configured", shared.ErrMissingCredentials)
	}

	state, err = shared.GenerateState()
	if err != nil {
		return "", "", err
	}

	authURL, err = s.auth.BeginLogin(ctx, state)
	if err != nil {
		return "", "", s.fail(fmt.Errorf("failed to start login: %w", err))
	}

	s.transition(authenticatingUpdate())
	return authURL, state, nil
}

// HandleRedirect completes the login with the callback parameters.
//
// A redirect carrying an error never reaches the token exchange.
func (s *Session) HandleRedirect(ctx context.Context, res server.OAuthResult) error {
	if err := res.Err(); err != nil {
		return s.fail(err)
	}

	if res.Denied() {
		s.logger.Error("spotify authorization error", "error", res.ErrorCode, "description", res.ErrorDescription)
		if err := s.store.Delete(models.KeyVerifier); err != nil {
			s.logger.Warn("failed to clear verifier", "error", err)
		}
		return s.fail(&AuthorizationError{Code: res.ErrorCode, Description: res.ErrorDescription})
	}

	if s.auth == nil {
		return s.fail(fmt.Errorf("%w: no authorizer configured", shared.ErrMissingCredentials))
	}

	token, err := s.auth.CompleteLogin(ctx, res.Code)
	if err != nil {
		return s.fail(err)
	}

	if err := s.store.Set(models.KeySpotifyToken, token); err != nil {
		return s.fail(fmt.Errorf("failed to store token: %w", err))
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.Info("logged in to spotify")
	s.transition(idleUpdate("Logged In. Prepared to die?"))
	return nil
}

// Logout clears the token, the credential, and any pending verifier.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(models.StateKeys...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.credential = ""
	s.last = nil
	s.mu.Unlock()

	s.logger.Info("logged out")
	s.transition(idleUpdate("Logged out."))
	return nil
}

// SetCredential stores a Gemini API key. Surrounding whitespace is trimmed.
func (s *Session) SetCredential(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: API key is empty", shared.ErrInvalidInput)
	}

	if err := s.store.Set(models.KeyGeminiAPIKey, key); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	s.mu.Lock()
	s.credential = key
	s.mu.Unlock()
	return nil
}

// ClearCredential removes the stored Gemini API key.
func (s *Session) ClearCredential() error {
	if err := s.store.Delete(models.KeyGeminiAPIKey); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}

	s.mu.Lock()
	s.credential = ""
	s.mu.Unlock()
	return nil
}

// Reset returns a finished session to Idle so another roast can be requested.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Busy() {
		s.state = Idle
	}
}

// Roast runs one fetch-then-generate cycle.
//
// A non-empty credentialOverride is stored first, replacing the saved key. Only one roast runs at a
// time; a concurrent call returns [shared.ErrRoastInFlight]. A rejected token is removed and
// generation is skipped; a rejected API key is removed.
func (s *Session) Roast(ctx context.Context, credentialOverride string) (*models.RoastResult, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, shared.ErrRoastInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	if credentialOverride != "" {
		if err := s.SetCredential(credentialOverride); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	token, credential := s.token, s.credential
	s.mu.Unlock()

	if credential == "" {
		return nil, shared.ErrMissingCredential
	}
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	if s.spotify == nil || s.generator == nil {
		return nil, fmt.Errorf("%w: session has no spotify or generator client", shared.ErrInvalidArgument)
	}

	s.transition(fetchingUpdate())

	result := s.spotify.TopTracks(ctx, token)
	if result.Kind() == services.TrackErrSessionExpired {
		_, err := result.Unwrap()
		s.logger.Warn("spotify session expired", "error", err)
		if delErr := s.store.Delete(models.KeySpotifyToken); delErr != nil {
			s.logger.Error("failed to clear token", "error", delErr)
		}
		s.mu.Lock()
		s.token = ""
		s.mu.Unlock()
		if !errors.Is(err, shared.ErrTokenExpired) {
			err = fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
		return nil, s.fail(err)
	}

	tracks, err := result.Unwrap()
	if err != nil {
		return nil, s.fail(err)
	}
	if len(tracks) == 0 {
		return nil, s.fail(shared.ErrNoTopTracks)
	}
	s.logger.Debug("fetched top tracks", "count", len(tracks))

	s.transition(generatingUpdate())

	roast, err := s.generator.Generate(ctx, credential, tracks)
	if err != nil {
		if errors.Is(err, shared.ErrCredentialInvalid) {
			if delErr := s.store.Delete(models.KeyGeminiAPIKey); delErr != nil {
				s.logger.Error("failed to clear credential", "error", delErr)
			}
			s.mu.Lock()
			s.credential = ""
			s.mu.Unlock()
		}
		return nil, s.fail(err)
	}

	out := &models.RoastResult{Tracks: tracks, Roast: *roast}

	s.mu.Lock()
	s.last = out
	s.mu.Unlock()

	s.logger.Info("roast generated", "title", roast.Title)
	s.transition(doneUpdate(roast.Title))
	return out, nil
}

// fail logs err, moves to Failed, and returns err.
func (s *Session) fail(err error) error {
	s.logger.Error("session step failed", "error", err)
	s.transition(failedUpdate(err))
	return err
}

func (s *Session) transition(update ProgressUpdate) {
	s.mu.Lock()
	s.state = update.State
	s.mu.Unlock()
	s.sendProgress(update)
}

// sendProgress sends a progress update through the channel without blocking.
func (s *Session) sendProgress(update ProgressUpdate) {
	if s.progress == nil {
		return
	}
	select {
	case s.progress <- update:
	default:
	}
}
