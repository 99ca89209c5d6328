package movelog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"shelve/internal/config"
	"shelve/internal/logging"
)

// Store persists move records.
type Store interface {
	// List returns summaries of every readable record, newest first.
	// Unreadable records are logged and skipped.
	List(ctx context.Context) ([]Summary, error)
	// Save assigns rec.ID from rec.Timestamp and persists it without
	// replacing any existing record.
	Save(ctx context.Context, rec *Record) error
	// Load returns the record with id.
	Load(ctx context.Context, id string) (*Record, error)
	// Delete removes the record with id. Missing records are not an error.
	Delete(ctx context.Context, id string) error
	// Latest returns the newest readable record or ErrNothingToUndo.
	Latest(ctx context.Context) (*Summary, error)
	// Owns reports whether path belongs to the store's own storage.
	Owns(path string) bool
	Close() error
}

// Open returns the backend selected by cfg.Store.Backend, rooted at
// cfg.Paths.LogsDir.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("open record store: nil config")
	}
	logger = logging.NewComponentLogger(logger, "movelog")
	switch cfg.Store.Backend {
	case config.BackendJSON, "":
		return NewJSONStore(cfg.Paths.LogsDir, logger), nil
	case config.BackendSQLite:
		return OpenSQLiteStore(context.Background(), cfg.Paths.LogsDir, logger)
	default:
		return nil, fmt.Errorf("open record store: unsupported backend %q", cfg.Store.Backend)
	}
}

// sortNewestFirst orders summaries by timestamp then ID, both descending.
func sortNewestFirst(list []Summary) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID > b.ID
	})
}

func latestOf(ctx context.Context, s Store) (*Summary, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNothingToUndo
	}
	latest := list[0]
	return &latest, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func prepareForSave(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("save record: nil record")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	return nil
}
