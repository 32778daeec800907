// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/services"
)

// SampleTracks returns five tracks with artists and album art.
func SampleTracks() []models.Track {
	images := []models.Image{
		{URL: "https://i.scdn.co/image/640", Height: 640, Width: 640},
		{URL: "https://i.scdn.co/image/300", Height: 300, Width: 300},
		{URL: "https://i.scdn.co/image/64", Height: 64, Width: 64},
	}
	return []models.Track{
		{ID: "1", Name: "Espresso", Artists: []models.Artist{{Name: "Sabrina Carpenter"}}, Album: models.Album{Name: "Short n' Sweet", Images: images}},
		{ID: "2", Name: "Not Like Us", Artists: []models.Artist{{Name: "Kendrick Lamar"}}, Album: models.Album{Name: "Not Like Us", Images: images}},
		{ID: "3", Name: "BIRDS OF A FEATHER", Artists: []models.Artist{{Name: "Billie Eilish"}}, Album: models.Album{Name: "HIT ME HARD AND SOFT", Images: images}},
		{ID: "4", Name: "Good Luck, Babe!", Artists: []models.Artist{{Name: "Chappell Roan"}}, Album: models.Album{Name: "Good Luck, Babe!", Images: images[:1]}},
		{ID: "5", Name: "Pink Pony Club", Artists: []models.Artist{{Name: "Chappell Roan"}}},
	}
}

// SampleRoast returns a fixed roast.
func SampleRoast() *models.Roast {
	return &models.Roast{Title: "Certified Pop Girlie NPC", Body: "Your taste is mid and you are cooked."}
}

// MockAuthorizer is a test double for [services.Authorizer]
type MockAuthorizer struct {
	mu            sync.Mutex
	AuthURL       string
	Token         string
	BeginErr      error
	CompleteErr   error
	BeginCalls    int
	CompleteCalls int
	LastState     string
	LastCode      string
}

func (m *MockAuthorizer) BeginLogin(ctx context.Context, state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BeginCalls++
	m.LastState = state
	if m.BeginErr != nil {
		return "", m.BeginErr
	}
	return m.AuthURL, nil
}

func (m *MockAuthorizer) CompleteLogin(ctx context.Context, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalls++
	m.LastCode = code
	if m.CompleteErr != nil {
		return "", m.CompleteErr
	}
	return m.Token, nil
}

// Calls returns the begin and complete call counts.
func (m *MockAuthorizer) Calls() (begin, complete int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.BeginCalls, m.CompleteCalls
}

// MockTrackFetcher is a test double for [services.TrackFetcher]
type MockTrackFetcher struct {
	mu        sync.Mutex
	Result    services.TrackResult
	Calls     int
	LastToken string
}

// NewMockTrackFetcher returns a fetcher that always succeeds with tracks.
func NewMockTrackFetcher(tracks []models.Track) *MockTrackFetcher {
	return &MockTrackFetcher{Result: services.TracksOK(tracks)}
}

func (m *MockTrackFetcher) TopTracks(ctx context.Context, token string) services.TrackResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastToken = token
	return m.Result
}

// CallCount returns the number of TopTracks calls.
func (m *MockTrackFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockGenerator is a test double for [services.RoastGenerator] and [services.ModelLister]
//
// When Block is set, Generate waits for it to be closed (or for ctx) before returning.
type MockGenerator struct {
	mu             sync.Mutex
	Roast          *models.Roast
	Err            error
	Models         []services.Model
	ListErr        error
	Block          chan struct{}
	Calls          int
	LastCredential string
	LastTracks     []models.Track
}

func (m *MockGenerator) Generate(ctx context.Context, credential string, tracks []models.Track) (*models.Roast, error) {
	m.mu.Lock()
	m.Calls++
	m.LastCredential = credential
	m.LastTracks = tracks
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Roast, nil
}

func (m *MockGenerator) ListModels(ctx context.Context, credential string) ([]services.Model, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Models, nil
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
