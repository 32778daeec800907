package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed          = fmt.Errorf("authentication failed")
	ErrAuthorizationDenied = fmt.Errorf("authorization denied")
	ErrNotAuthenticated    = fmt.Errorf("not authenticated")
	ErrTokenExpired        = fmt.Errorf("access token expired")
	ErrNoVerifier          = fmt.Errorf("no code verifier stored")
	ErrInvalidState        = fmt.Errorf("invalid state parameter")
	ErrTimeout             = fmt.Errorf("operation timed out")

	// Generation errors
	ErrMissingCredential = fmt.Errorf("missing Gemini API key")
	ErrCredentialInvalid = fmt.Errorf("invalid Gemini API key")
	ErrMalformedResponse = fmt.Errorf("malformed model response")
	ErrRoastInFlight     = fmt.Errorf("a roast is already in progress")
	ErrNoTopTracks       = fmt.Errorf("no top tracks found")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
