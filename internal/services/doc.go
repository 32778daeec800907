// Package services implements the remote API clients behind a roast.
//
// # Spotify
//
// [SpotifyAuth] implements [Authorizer] with the authorization code flow and PKCE (no client secret).
// The verifier is persisted in the [models.KeyValueStore] between [SpotifyAuth.BeginLogin] and
// [SpotifyAuth.CompleteLogin], and is erased as soon as the exchange has been attempted.
//
// [SpotifyService] implements [TrackFetcher] on top of github.com/zmb3/spotify/v2. The result is a
// [TrackResult], so callers have to handle [TrackErrSessionExpired] (the token is no longer valid)
// separately from other failures.
//
// # Gemini
//
// [GeminiService] implements [RoastGenerator] against the generativelanguage v1beta REST API.
// A call makes at most two generation attempts:
//
//  1. [AttemptDefault] targets the configured model. A 2xx response that parses into a roast is final.
//  2. Otherwise model discovery runs once and [AttemptDiscovered] targets the first listed model that
//     supports generateContent, falling back to the configured model.
//  3. [Terminal]: the retry's outcome is returned as is.
//
// Responses are read with gjson; [ParseRoast] strips markdown code fences before decoding.
//
// # Error Handling
//
// Services wrap sentinel errors from the shared package:
//   - [shared.ErrTokenExpired]: Spotify rejected the token
//   - [shared.ErrAuthFailed]: the code exchange failed
//   - [shared.ErrNoVerifier]: no login is in progress
//   - [shared.ErrCredentialInvalid]: Gemini rejected the API key
//   - [shared.ErrMalformedResponse]: the model reply had no usable JSON
//   - [shared.ErrAPIRequest]: any other HTTP failure
package services
