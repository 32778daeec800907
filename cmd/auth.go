package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/roastify/internal/server"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login starts the loopback server, opens the authorize page, and waits for the redirect.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx); err != nil {
		return err
	}

	announce := func(url string) {
		r.writePlain("Open this URL in your browser to log in:\n%s\n", url)
	}

	if err := r.login(ctx, announce); err != nil {
		return r.fail(err)
	}

	return r.writePlain("✓ Logged in to Spotify\n")
}

// login runs one authorization round trip.
//
// When the browser can't be opened the URL goes to announce, or the login fails if announce is nil.
func (r *Runner) login(ctx context.Context, announce func(url string)) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	authURL, state, err := r.session.BeginLogin(ctx)
	if err != nil {
		return err
	}

	handler := server.NewOAuthHandler(state)
	router := server.NewCallbackRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	srv, err := server.Listen(r.config.Server.Addr(), router, r.logger)
	if err != nil {
		return err
	}
	r.callbackAddr = srv.Addr()
	srv.Serve()
	defer func() {
		if err := srv.Shutdown(); err != nil {
			r.logger.Warn("failed to stop callback server", "error", err)
		}
	}()

	r.logger.Info("waiting for spotify callback", "addr", srv.Addr())

	if err := r.browser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		if announce == nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}
		announce(authURL)
	}

	ctx, cancel := context.WithTimeout(ctx, r.loginTimeout)
	defer cancel()

	select {
	case res, ok := <-handler.Result():
		if !ok {
			return fmt.Errorf("%w: callback closed without a result", shared.ErrAuthFailed)
		}
		return r.session.HandleRedirect(ctx, res)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: no callback within %s", shared.ErrTimeout, r.loginTimeout)
		}
		return ctx.Err()
	}
}

// Logout removes the token, the API key, and any pending verifier.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx); err != nil {
		return err
	}

	if err := r.session.Logout(ctx); err != nil {
		return r.fail(err)
	}

	return r.writePlain("✓ Logged out\n")
}

// sessionStatus is the JSON shape of the status command.
type sessionStatus struct {
	LoggedIn      bool   `json:"logged_in"`
	HasCredential bool   `json:"has_api_key"`
	ClientID      bool   `json:"client_id_configured"`
	Model         string `json:"model"`
	Config        string `json:"config"`
	Ephemeral     bool   `json:"ephemeral"`
}

// Status reports what the session holds without revealing any secret.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx); err != nil {
		return err
	}

	status := sessionStatus{
		LoggedIn:      r.session.LoggedIn(),
		HasCredential: r.session.HasCredential(),
		ClientID:      r.config.Credentials.Spotify.ClientID != "",
		Model:         r.config.Credentials.Gemini.Model,
		Config:        r.configPath,
		Ephemeral:     r.ephemeral,
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	r.writePlainHeader("roastify status")
	r.writePlain("Spotify:   %s\n", mark(status.LoggedIn, "logged in", "not logged in"))
	r.writePlain("Gemini:    %s\n", mark(status.HasCredential, "API key stored", "no API key"))
	r.writePlain("Client ID: %s\n", mark(status.ClientID, "configured", "missing (set SPOTIFY_CLIENT_ID)"))
	r.writePlain("Model:     %s\n", status.Model)
	if status.Config != "" {
		r.writePlain("Config:    %s\n", status.Config)
	}
	return nil
}

func mark(ok bool, yes, no string) string {
	if ok {
		return "✓ " + yes
	}
	return "✗ " + no
}
