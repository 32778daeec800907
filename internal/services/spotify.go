// Spotify implementation of [Authorizer] and [TrackFetcher]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/pkce"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	// TopTracksLimit is the number of tracks a roast is based on.
	TopTracksLimit = 5

	spotifyBaseURL        = "https://api.spotify.com/v1/"
	defaultSpotifyTimeout = 60 * time.Second
)

// MissingClientIDMessage tells the user how to configure the Spotify application.
const MissingClientIDMessage = "Missing Spotify Client ID! Set SPOTIFY_CLIENT_ID in your .env file " +
	"(or credentials.spotify.client_id in config.toml) and try again."

var (
	_ Authorizer   = (*SpotifyAuth)(nil)
	_ TrackFetcher = (*SpotifyService)(nil)
)

// SpotifyAuth runs the PKCE authorization code flow for a public client.
type SpotifyAuth struct {
	config     *oauth2.Config
	store      models.KeyValueStore
	generator  *pkce.Generator
	httpClient *http.Client
}

// AuthOption configures a [SpotifyAuth].
type AuthOption func(*SpotifyAuth)

// WithEndpoint overrides the authorize and token URLs.
func WithEndpoint(authURL, tokenURL string) AuthOption {
	return func(a *SpotifyAuth) {
		a.config.Endpoint.AuthURL = authURL
		a.config.Endpoint.TokenURL = tokenURL
	}
}

// WithAuthHTTPClient sets the client used for the token exchange.
func WithAuthHTTPClient(c *http.Client) AuthOption {
	return func(a *SpotifyAuth) {
		a.httpClient = c
	}
}

// WithGenerator sets the verifier source.
func WithGenerator(g *pkce.Generator) AuthOption {
	return func(a *SpotifyAuth) {
		a.generator = g
	}
}

// NewSpotifyAuth creates a [SpotifyAuth] that keeps its verifier in store.
//
// Returns [shared.ErrMissingCredentials] when no client ID is configured.
func NewSpotifyAuth(cfg shared.SpotifyConfig, store models.KeyValueStore, opts ...AuthOption) (*SpotifyAuth, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingCredentials, MissingClientIDMessage)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", shared.ErrInvalidArgument)
	}

	a := &SpotifyAuth{
		config: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURI,
			Scopes:      []string{spotifyauth.ScopeUserTopRead},
			Endpoint: oauth2.Endpoint{
				AuthURL:   spotifyauth.AuthURL,
				TokenURL:  spotifyauth.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:      store,
		generator:  pkce.NewGenerator(nil),
		httpClient: &http.Client{Timeout: defaultSpotifyTimeout},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// BeginLogin generates a verifier/challenge pair, persists the verifier, and returns the authorize URL.
func (a *SpotifyAuth) BeginLogin(ctx context.Context, state string) (string, error) {
	pair, err := a.generator.Generate()
	if err != nil {
		return "", err
	}

	if err := a.store.Set(models.KeyVerifier, pair.Verifier); err != nil {
		return "", fmt.Errorf("failed to store verifier: %w", err)
	}

	return a.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge_method", pkce.Method),
		oauth2.SetAuthURLParam("code_challenge", pair.Challenge),
	), nil
}

// CompleteLogin exchanges code for an access token.
//
// The stored verifier is consumed whether or not the exchange succeeds, and a failure to erase it
// is returned joined with any exchange error. The token is not persisted here.
func (a *SpotifyAuth) CompleteLogin(ctx context.Context, code string) (accessToken string, err error) {
	if code == "" {
		return "", fmt.Errorf("%w: authorization code is empty", shared.ErrMissingArgument)
	}

	verifier, ok, err := a.store.Get(models.KeyVerifier)
	if err != nil {
		return "", fmt.Errorf("failed to read verifier: %w", err)
	}
	if !ok || verifier == "" {
		return "", shared.ErrNoVerifier
	}

	defer func() {
		if delErr := a.store.Delete(models.KeyVerifier); delErr != nil {
			accessToken = ""
			err = errors.Join(err, fmt.Errorf("failed to erase verifier: %w", delErr))
		}
	}()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	token, err := a.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: token response had no access_token", shared.ErrAuthFailed)
	}

	return token.AccessToken, nil
}

// SpotifyService fetches listening data with a user access token.
type SpotifyService struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) SpotifyOption {
	return func(s *SpotifyService) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		s.baseURL = u
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) SpotifyOption {
	return func(s *SpotifyService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTransport sets the underlying round tripper.
func WithTransport(rt http.RoundTripper) SpotifyOption {
	return func(s *SpotifyService) {
		s.transport = rt
	}
}

// NewSpotifyService creates a new [SpotifyService].
func NewSpotifyService(opts ...SpotifyOption) *SpotifyService {
	s := &SpotifyService{
		baseURL:   spotifyBaseURL,
		timeout:   defaultSpotifyTimeout,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the name of the service
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// TopTracks fetches the user's five most played tracks over the short-term window.
//
// A 401 yields [TrackErrSessionExpired]; anything else that goes wrong yields [TrackErrFailed].
func (s *SpotifyService) TopTracks(ctx context.Context, token string) TrackResult {
	if token == "" {
		return TracksFailed(TrackErrSessionExpired, shared.ErrNotAuthenticated)
	}

	recorder := &statusRecorder{base: s.transport}
	httpClient := &http.Client{
		Timeout: s.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   recorder,
		},
	}

	client := spotify.New(httpClient, spotify.WithBaseURL(s.baseURL))
	page, err := client.CurrentUsersTopTracks(ctx,
		spotify.Limit(TopTracksLimit),
		spotify.Timerange(spotify.ShortTermRange),
	)
	if err != nil {
		if isUnauthorized(err) || recorder.status == http.StatusUnauthorized {
			return TracksFailed(TrackErrSessionExpired, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err))
		}
		return TracksFailed(TrackErrFailed, fmt.Errorf("%w: top tracks: %v", shared.ErrAPIRequest, err))
	}

	tracks := make([]models.Track, 0, len(page.Tracks))
	for _, ft := range page.Tracks {
		tracks = append(tracks, convertTrack(ft))
	}

	return TracksOK(tracks)
}

func convertTrack(ft spotify.FullTrack) models.Track {
	t := models.Track{
		ID:   string(ft.ID),
		Name: ft.Name,
		Album: models.Album{
			Name: ft.Album.Name,
		},
	}
	for _, a := range ft.Artists {
		t.Artists = append(t.Artists, models.Artist{Name: a.Name})
	}
	for _, img := range ft.Album.Images {
		t.Album.Images = append(t.Album.Images, models.Image{URL: img.URL})
	}
	return t
}

func isUnauthorized(err error) bool {
	var se spotify.Error
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized
	}
	var sp *spotify.Error
	if errors.As(err, &sp) && sp != nil {
		return sp.Status == http.StatusUnauthorized
	}
	return false
}

// statusRecorder remembers the status of the last response.
type statusRecorder struct {
	base   http.RoundTripper
	status int
}

func (r *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req)
	if resp != nil {
		r.status = resp.StatusCode
	}
	return resp, err
}
