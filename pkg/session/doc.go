// Package session holds the client side of a Mockify session: the access
// token store and the session status state machine.
//
// A session exists exactly when the TokenStore holds a non-empty token.
// Expiry is never tracked locally; the server reports it with a 401 and the
// HTTP layer reacts. Stores are plain values injected into the HTTP client,
// so tests can use their own MemoryStore and run in parallel.
package session
