package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/roastify/internal/server"
	"github.com/desertthunder/roastify/internal/services"
	"github.com/desertthunder/roastify/internal/shared"
)

// AuthorizationError is returned when the authorization redirect carried an error parameter.
//
// It matches [shared.ErrAuthorizationDenied] with [errors.Is].
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%v: %s (%s)", shared.ErrAuthorizationDenied, e.Code, e.Description)
	}
	return fmt.Sprintf("%v: %s", shared.ErrAuthorizationDenied, e.Code)
}

func (e *AuthorizationError) Unwrap() error {
	return shared.ErrAuthorizationDenied
}

// UserMessage maps an error to the sentence shown to the user. Details belong in the log.
func UserMessage(err error) string {
	var authErr *AuthorizationError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &authErr) && authErr.Code == server.ErrorAccessDenied:
		return "Login Failed: You are likely not added to the Spotify Developer Dashboard. " +
			"Ask the developer to add your email to the 'Users' list in the dashboard!"
	case errors.As(err, &authErr):
		return "Login Error: " + authErr.Code
	case errors.Is(err, shared.ErrAuthorizationDenied):
		return "Login Failed: Spotify did not grant access."
	case errors.Is(err, shared.ErrMissingCredentials):
		return services.MissingClientIDMessage
	case errors.Is(err, shared.ErrInvalidState):
		return "Login Failed: the callback did not match this login attempt. Try again."
	case errors.Is(err, shared.ErrNoVerifier), errors.Is(err, shared.ErrAuthFailed):
		return "Login Failed: could not exchange the authorization code. Try logging in again."
	case errors.Is(err, shared.ErrTimeout):
		return "Login timed out. Try again."
	case errors.Is(err, shared.ErrTokenExpired):
		return "Session expired. Please login again."
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "You're not logged in. Login with Spotify first."
	case errors.Is(err, shared.ErrCredentialInvalid):
		return "Invalid Gemini API Key! Clearing it so you can try again."
	case errors.Is(err, shared.ErrMissingCredential):
		return "We need a Gemini API Key to generate the roast. Get one at https://aistudio.google.com/app/apikey"
	case errors.Is(err, shared.ErrNoTopTracks):
		return "Spotify has no recent top tracks for you. Go listen to something first."
	case errors.Is(err, shared.ErrRoastInFlight):
		return "Hold on, a roast is already cooking."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	default:
		return "Failed to roast. Check the log for details."
	}
}
