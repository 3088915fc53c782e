// Package config resolves pipis configuration.
// Values come from, in increasing priority: built-in defaults, config files
// (system, user, explicit), PIPIS_* environment variables, and explicit
// overrides supplied by command-line flags.
package config
