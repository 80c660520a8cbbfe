// Package cliconfig provides configuration types and loading for the mockify CLI.
//
// It implements a layered configuration system with the following precedence
// (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables (MOCKIFY_* prefix)
//  3. Local config file (.mockifyrc.yaml in current directory)
//  4. Global config file (~/.config/mockify/config.yaml)
//  5. Default values
//
// Named contexts live in contexts.json next to the global config. Each
// context pairs an API base URL with the access token of the session opened
// against it; the file is written with 0600 permissions.
package cliconfig
