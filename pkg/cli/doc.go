// Package cli provides the command-line interface for Mockify.
//
// Commands talk to the Mockify REST API through pkg/httpclient, which
// carries the bearer token of the active context and refreshes it once
// when the API answers 401:
//   - login, register, logout, whoami, status: session management
//   - verify-email, forgot-password, reset-password: account recovery
//   - auth google-url: print the Google sign-in entry point
//   - orgs, projects, schemas, records: resource management
//   - dashboard: usage statistics, optionally refreshed with --watch
//   - context: named API endpoints, each holding its own session
//   - config show: effective configuration and where each value came from
//   - version: build information
//
// Resources are addressed by slug, mirroring the API paths:
//
//	mockify projects list acme
//	mockify schemas get acme shop users
//	mockify records list acme shop users --where 'data.age > 30'
//	mockify records import acme shop users 'fixtures/**/*.json'
//	mockify schemas openapi acme shop > openapi.yaml
//
// Every command accepts --json, which writes only the JSON document to
// stdout; progress messages and hints go to stderr.
package cli
