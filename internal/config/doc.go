// Package config loads, normalizes, and validates rendersubmit configuration.
//
// It supplies repository defaults, reads TOML files, overlays RENDERSUBMIT_*
// environment variables, and expands user paths (including tilde shortcuts)
// so the state directory, sticky settings file, job history bundles, and
// history database are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, a validated non-sticky parameter policy, and clear
// validation errors.
package config
