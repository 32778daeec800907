// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through the roast flow:
//  1. [LoginView] : Login with Spotify (opens the browser)
//  2. [StartView] : "Prepared to die?"
//  3. [KeyInputView] : Masked Gemini API key entry, shown when no key is stored or the key was rejected
//  4. [LoadingView] : Spinner with a decrypting status line while tracks are fetched and the roast generated
//  5. [ResultView] : The evidence list and the roast, revealed with [Decrypt]
//  6. [ErrorView] : The user-facing error message
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Session progress flows through a channel and is re-subscribed after each update.
//
// [Scramble] is the pure frame function behind [Decrypt]: characters left of the cursor are final, spaces and newlines
// are kept, everything else is a random letter or digit.
package ui
