package testsupport

import (
	"testing"

	"shelve/internal/config"
	"shelve/internal/movelog"
)

// MustOpenStore opens the configured record store and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) movelog.Store {
	t.Helper()

	store, err := movelog.Open(cfg, nil)
	if err != nil {
		t.Fatalf("movelog.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// Backends lists every record store backend for table-driven tests.
func Backends() []string {
	return []string{config.BackendJSON, config.BackendSQLite}
}
