// Package repositories implements SQLite persistence for session state.
//
// Browser-style local storage is modelled as the app_state table: one row per fixed key
// ([models.KeySpotifyToken], [models.KeyGeminiAPIKey], [models.KeyVerifier]).
//
// Key Implementations:
//   - [StateRepository] : SQLite-backed [models.KeyValueStore]
//   - [MemoryStore] : in-process [models.KeyValueStore] for tests and --ephemeral runs
//
// Unknown keys are rejected with [shared.ErrInvalidArgument] so nothing else leaks into the store.
package repositories
