// Package config assembles the sidecar configuration from command-line
// flags, NOTES_SIDECAR_* environment variables, an optional YAML file and
// built-in defaults, in that order of precedence.
package config
