// Package config loads, normalizes, and validates shelve configuration.
//
// It supplies built-in defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SHELVE_LOGS_DIR environment
// override. Config carries the record store location and backend, the
// organize conflict policy, logging settings, and an optional replacement
// category table.
//
// Always obtain settings through Load so downstream code receives absolute
// paths, canonical enum values, and clear validation errors.
package config
