// package models defines the data model for the roast service
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Image is an album cover rendition. Spotify lists them largest first.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// Artist is a credited track artist.
type Artist struct {
	Name string `json:"name"`
}

// Album carries the cover images of a track's album.
type Album struct {
	Name   string  `json:"name,omitempty"`
	Images []Image `json:"images"`
}

// Track represents one ranked entry of the user's top tracks.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	Album   Album    `json:"album"`
}

// PrimaryArtist returns the first credited artist's name, or "Unknown Artist".
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 || t.Artists[0].Name == "" {
		return "Unknown Artist"
	}
	return t.Artists[0].Name
}

// Thumbnail returns the URL of the smallest cover rendition.
//
// Prefers the third image (Spotify's 64px size) and falls back to the last one.
func (t Track) Thumbnail() string {
	images := t.Album.Images
	switch {
	case len(images) >= 3:
		return images[2].URL
	case len(images) > 0:
		return images[len(images)-1].URL
	default:
		return ""
	}
}

// Roast is the generated insult: a short title and a paragraph body.
type Roast struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Validate reports whether the model produced both fields.
func (r Roast) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Title) == "" {
		errs = append(errs, fmt.Errorf("title is empty"))
	}
	if strings.TrimSpace(r.Body) == "" {
		errs = append(errs, fmt.Errorf("body is empty"))
	}
	return errors.Join(errs...)
}

// RoastResult is a roast together with the track list it was generated from.
//
// The two are always produced by the same cycle and never shown apart.
type RoastResult struct {
	Tracks []Track `json:"tracks"`
	Roast  Roast   `json:"roast"`
}

// StateKey names a value in the persistent [KeyValueStore].
type StateKey string

const (
	KeySpotifyToken StateKey = "spotify_token"  // OAuth access token
	KeyGeminiAPIKey StateKey = "gemini_api_key" // generative API credential
	KeyVerifier     StateKey = "verifier"       // PKCE code verifier awaiting exchange
)

// StateKeys lists every key the store accepts.
var StateKeys = []StateKey{KeySpotifyToken, KeyGeminiAPIKey, KeyVerifier}

// Valid reports whether k is one of the fixed [StateKeys].
func (k StateKey) Valid() bool {
	for _, known := range StateKeys {
		if k == known {
			return true
		}
	}
	return false
}

// KeyValueStore persists session state under the fixed [StateKey] names.
type KeyValueStore interface {
	Get(key StateKey) (string, bool, error) // Get returns the value and whether it was present
	Set(key StateKey, value string) error   // Set stores or replaces the value
	Delete(keys ...StateKey) error          // Delete removes the given keys; missing keys are ignored
}
