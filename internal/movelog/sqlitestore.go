package movelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"shelve/internal/logging"
)

// DatabaseName is the SQLite file created inside the logs directory.
const DatabaseName = "records.db"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	timestampLayout         = time.RFC3339Nano
)

// SQLiteStore keeps records in a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLiteStore opens or creates <dir>/records.db.
func OpenSQLiteStore(ctx context.Context, dir string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx = ensureContext(ctx)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, Wrap(ErrFilesystem, "create logs directory", dir, err)
	}

	dbPath, err := filepath.Abs(filepath.Join(dir, DatabaseName))
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps PRAGMAs in force for every statement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath, logger: logger}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	ctx = ensureContext(ctx)
	var out []Summary
	err := retryOnBusy(ctx, func() error {
		out = out[:0]
		rows, err := s.db.QueryContext(ctx, `
			SELECT r.id, r.run_id, r.folder, r.created_at, COUNT(e.position)
			FROM records r
			LEFT JOIN record_entries e ON e.record_id = r.id
			GROUP BY r.id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		logger := logging.WithContext(ctx, s.logger)
		for rows.Next() {
			var (
				id, runID, folder, created string
				count                      int
			)
			if err := rows.Scan(&id, &runID, &folder, &created, &count); err != nil {
				return err
			}
			ts, err := time.Parse(timestampLayout, created)
			if err != nil {
				logging.WarnWithContext(logger, "skipping unreadable move record", "record_skipped",
					logging.String(logging.FieldRecordID, id),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "delete the row from "+s.path),
					logging.String(logging.FieldImpact, "record hidden from history and cannot be undone"),
				)
				continue
			}
			out = append(out, newSummary(id, runID, folder, ts, count))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, Wrap(ErrFilesystem, "list records", s.path, err)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if err := prepareForSave(rec); err != nil {
		return err
	}
	ctx = ensureContext(ctx)

	var id string
	err := retryOnBusy(ctx, func() error {
		var txErr error
		id, txErr = s.insert(ctx, rec)
		return txErr
	})
	if err != nil {
		return Wrap(ErrFilesystem, "save record", s.path, err)
	}
	if id == "" {
		return Wrap(ErrFilesystem, "save record", s.path, fmt.Errorf("more than %d records in one second", maxSequence+1))
	}
	rec.ID = id
	logging.WithContext(ctx, s.logger).Debug("move record saved",
		logging.String(logging.FieldRecordID, rec.ID),
		logging.Int("entries", rec.Len()),
	)
	return nil
}

// insert claims the first free ID for rec and writes its entries in one
// transaction. An empty ID means every tiebreaker was taken.
func (s *SQLiteStore) insert(ctx context.Context, rec *Record) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	created := rec.Timestamp.UTC().Format(timestampLayout)
	var id string
	for seq := 0; seq <= maxSequence; seq++ {
		candidate := FormatID(rec.Timestamp, seq)
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO records (id, run_id, folder, created_at) VALUES (?, ?, ?, ?)",
			candidate, rec.RunID, rec.Folder, created)
		if err != nil {
			return "", err
		}
		if n, err := res.RowsAffected(); err != nil {
			return "", err
		} else if n == 1 {
			id = candidate
			break
		}
	}
	if id == "" {
		return "", nil
	}

	for i, entry := range rec.Entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO record_entries (record_id, position, new_path, original_path) VALUES (?, ?, ?, ?)",
			id, i, entry.NewPath, entry.OriginalPath); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*Record, error) {
	ctx = ensureContext(ctx)
	var (
		rec     *Record
		missing bool
		corrupt error
	)
	err := retryOnBusy(ctx, func() error {
		missing, corrupt = false, nil
		var created string
		r := Record{ID: id}
		err := s.db.QueryRowContext(ctx,
			"SELECT run_id, folder, created_at FROM records WHERE id = ?", id,
		).Scan(&r.RunID, &r.Folder, &created)
		if errors.Is(err, sql.ErrNoRows) {
			missing = true
			return nil
		}
		if err != nil {
			return err
		}
		if r.Timestamp, err = time.Parse(timestampLayout, created); err != nil {
			corrupt = err
			return nil
		}

		rows, err := s.db.QueryContext(ctx,
			"SELECT new_path, original_path FROM record_entries WHERE record_id = ? ORDER BY position", id)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var e Entry
			if err := rows.Scan(&e.NewPath, &e.OriginalPath); err != nil {
				return err
			}
			r.Entries = append(r.Entries, e)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rec = &r
		return nil
	})
	switch {
	case err != nil:
		return nil, Wrap(ErrFilesystem, "load record", s.path, err)
	case missing:
		return nil, notFound("load record", id)
	case corrupt != nil:
		return nil, Wrap(ErrRecordCorrupt, "load record", id, corrupt)
	}
	return rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, "DELETE FROM record_entries WHERE record_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return Wrap(ErrFilesystem, "delete record", s.path, err)
	}
	logging.WithContext(ctx, s.logger).Debug("move record deleted",
		logging.String(logging.FieldRecordID, id))
	return nil
}

func (s *SQLiteStore) Latest(ctx context.Context) (*Summary, error) {
	return latestOf(ctx, s)
}

// Owns reports whether path is the database or one of its sidecar files.
func (s *SQLiteStore) Owns(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	switch abs {
	case s.path, s.path + "-wal", s.path + "-shm", s.path + "-journal":
		return true
	}
	return false
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
