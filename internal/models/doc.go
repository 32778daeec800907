// Package models defines the domain types shared by the services, the session controller and the front ends.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects: values fetched from or produced by the remote APIs
//   - [Track] : one of the user's most-played tracks, with ranked artists and album art
//   - [Roast] : the generated title and body
//   - [RoastResult] : a roast together with the evidence it was built from
//
// 2. Persistent state: the fixed-key [KeyValueStore] holding the access token,
// the Gemini credential and the PKCE verifier between runs.
package models
