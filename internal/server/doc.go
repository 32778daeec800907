// Package server provides the loopback HTTP server used during login.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] runs in the order it was added. [CallbackRouter] registers method-qualified
// [http.ServeMux] patterns, so a POST to the callback gets 405 without reaching the handler.
//
// # Authorization Callback
//
// [OAuthHandler] receives the redirect from the Spotify authorize page. It validates the state parameter,
// then sends the code (or the error and error_description) through a channel exactly once. Exchanging the
// code is left to the caller, which holds the PKCE verifier.
//
// [CallbackServer] binds the redirect URI's host before the browser is opened and is shut down as soon as
// the result arrives.
package server
