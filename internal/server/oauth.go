package server

import (
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/desertthunder/roastify/internal/shared"
)

// ErrorAccessDenied is the error code Spotify returns when the user refuses consent
// or is not on a development-mode app's allow-list.
const ErrorAccessDenied = "access_denied"

// OAuthResult carries the redirect query parameters of an authorization callback.
type OAuthResult struct {
	Code             string
	ErrorCode        string
	ErrorDescription string
	err              error
}

// Err reports a callback that could not be processed at all (missing code).
func (o OAuthResult) Err() error {
	return o.err
}

// Denied reports whether the redirect carried an error parameter.
func (o OAuthResult) Denied() bool {
	return o.ErrorCode != ""
}

// OAuthHandler receives the authorization redirect on the loopback server.
// Implements the Handler interface for registration with a Router.
//
// It does not exchange the code: the caller owns the verifier and performs the exchange.
type OAuthHandler struct {
	state       string
	resultChan  chan OAuthResult
	once        sync.Once
	mu          sync.Mutex
	callbackHit bool
}

// NewOAuthHandler creates a new OAuth handler expecting the given state token.
// The state token should be cryptographically random for CSRF protection.
func NewOAuthHandler(state string) *OAuthHandler {
	return &OAuthHandler{
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the redirect and sends exactly one [OAuthResult].
// A request whose state does not match is rejected without consuming the callback.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("state") != h.state {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if errCode := q.Get("error"); errCode != "" {
		h.Send(OAuthResult{ErrorCode: errCode, ErrorDescription: q.Get("error_description")})
		renderPage(w, http.StatusOK, page{
			Title:   "Login Failed",
			Heading: "✗ Login Failed",
			Message: "Authorization was not granted. Return to the terminal for details.",
			Color:   "#E22134",
		})
		return
	}

	code := q.Get("code")
	if code == "" {
		h.Send(OAuthResult{err: fmt.Errorf("%w: callback carried neither code nor error", shared.ErrAuthFailed)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(OAuthResult{Code: code})
	renderPage(w, http.StatusOK, page{
		Title:   "Authorization Successful",
		Heading: "✓ Authorization Successful",
		Message: "You can close this window and return to the terminal.",
		Color:   "#1DB954",
	})
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

type page struct {
	Title   string
	Heading string
	Message string
	Color   string
}

var pageTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #000; }
        .container { text-align: center; background: #121212; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.4); }
        h1 { color: {{.Color}}; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Heading}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, p)
}
