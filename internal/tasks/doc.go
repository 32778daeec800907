// Package tasks drives a roast from login to result.
//
// # Lifecycle
//
// A [Session] moves through [Idle] → [Authenticating] → [Fetching] → [Generating] → [Done] or [Failed].
//
//  1. [Session.BeginLogin] stores a PKCE verifier and returns the authorize URL plus a state token.
//  2. [Session.HandleRedirect] takes the callback parameters. An error parameter yields an
//     [AuthorizationError] without attempting the exchange; a code is exchanged and the token stored.
//  3. [Session.Roast] fetches the top tracks and asks the generator for a roast.
//
// # Failure Handling
//
//   - A 401 from Spotify deletes the stored token and the generator is not called.
//   - A rejected Gemini key deletes the stored key so the user can enter a new one.
//   - [Session.Logout] deletes the token, the key, and any verifier.
//
// [UserMessage] turns any of these errors into the sentence the front end displays.
//
// # Progress Reporting
//
// Each state transition is sent as a [ProgressUpdate]. Sends use select with default, so a slow or
// absent reader never blocks a roast.
package tasks
