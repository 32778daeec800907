// package services implements the clients for the Spotify and Gemini HTTP APIs
package services

import (
	"context"
	"errors"

	"github.com/desertthunder/roastify/internal/models"
)

// Authorizer runs the PKCE authorization code flow.
type Authorizer interface {
	// BeginLogin stores a fresh verifier and returns the authorize URL to open in a browser.
	BeginLogin(ctx context.Context, state string) (string, error)

	// CompleteLogin exchanges the code for an access token using the stored verifier.
	CompleteLogin(ctx context.Context, code string) (string, error)
}

// TrackFetcher retrieves the current user's top tracks.
type TrackFetcher interface {
	TopTracks(ctx context.Context, token string) TrackResult
}

// RoastGenerator turns a track list into a [models.Roast].
type RoastGenerator interface {
	Generate(ctx context.Context, credential string, tracks []models.Track) (*models.Roast, error)
}

// ModelLister lists generation-capable models.
type ModelLister interface {
	ListModels(ctx context.Context, credential string) ([]Model, error)
}

// TrackErrKind classifies a failed [TrackResult].
type TrackErrKind int

const (
	TrackOK                TrackErrKind = iota // tracks were fetched
	TrackErrSessionExpired                     // the token was rejected (HTTP 401)
	TrackErrFailed                             // any other failure
)

func (k TrackErrKind) String() string {
	switch k {
	case TrackOK:
		return "ok"
	case TrackErrSessionExpired:
		return "session_expired"
	case TrackErrFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TrackResult holds either a track list or a classified error.
//
// Read it with [TrackResult.Unwrap] or switch on [TrackResult.Kind].
type TrackResult struct {
	tracks []models.Track
	kind   TrackErrKind
	err    error
}

// TracksOK wraps a successful fetch.
func TracksOK(tracks []models.Track) TrackResult {
	return TrackResult{tracks: tracks, kind: TrackOK}
}

// TracksFailed wraps a failed fetch. A nil err is replaced by a generic one.
func TracksFailed(kind TrackErrKind, err error) TrackResult {
	if kind == TrackOK {
		kind = TrackErrFailed
	}
	if err == nil {
		err = errors.New("top tracks request failed")
	}
	return TrackResult{kind: kind, err: err}
}

// Kind reports the outcome of the fetch.
func (r TrackResult) Kind() TrackErrKind {
	return r.kind
}

// Unwrap returns the tracks, or the error when the fetch failed.
func (r TrackResult) Unwrap() ([]models.Track, error) {
	if r.kind != TrackOK {
		return nil, r.err
	}
	return r.tracks, nil
}
