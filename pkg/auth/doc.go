// Package auth implements the Mockify session lifecycle on top of
// httpclient: register, login, logout, startup bootstrap, password reset,
// email verification and the current-user lookup.
//
// The Service owns the session status machine. The token itself lives in the
// client's session.TokenStore; the cached identity lives in a query.Cache and
// is never trusted once the token it was fetched under has changed.
package auth
