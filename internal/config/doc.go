// Package config loads, normalizes, and validates stremsync configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STREMIO_AUTHKEY. The Config type centralizes every knob the CLI needs,
// so the data directory, API credentials, and playback thresholds are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
