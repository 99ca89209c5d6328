// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"shelve/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose logs directory is a unique temp dir.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogsDir = filepath.Join(base, "logs")

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithBackend selects the record store backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
	}
}

// WithConflictFail makes destination collisions abort moves.
func WithConflictFail() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.OnConflict = config.ConflictFail
	}
}

// WithCategories replaces the category table.
func WithCategories(cats ...config.Category) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Categories = cats
	}
}
