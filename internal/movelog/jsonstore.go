package movelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shelve/internal/logging"
)

const (
	recordFilePrefix  = "organizer_log_"
	recordFileSuffix  = ".json"
	tempRecordPattern = ".record-*.tmp"
)

// link is swapped in tests to simulate filesystems without hard links.
var link = os.Link

// JSONStore keeps one JSON file per record in a directory.
type JSONStore struct {
	dir    string
	logger *slog.Logger
}

// NewJSONStore returns a store rooted at dir. The directory is created on
// first save.
func NewJSONStore(dir string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &JSONStore{dir: filepath.Clean(dir), logger: logger}
}

// Dir returns the directory holding record files.
func (s *JSONStore) Dir() string { return s.dir }

func (s *JSONStore) path(id string) string {
	return filepath.Join(s.dir, recordFilePrefix+id+recordFileSuffix)
}

// idFromFileName extracts the record ID from a record file name.
func idFromFileName(name string) (string, bool) {
	if !strings.HasPrefix(name, recordFilePrefix) || !strings.HasSuffix(name, recordFileSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, recordFilePrefix), recordFileSuffix)
	return id, id != ""
}

func (s *JSONStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, Wrap(ErrFilesystem, "list records", s.dir, err)
	}

	logger := logging.WithContext(ensureContext(ctx), s.logger)
	out := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := idFromFileName(entry.Name())
		if !ok {
			continue
		}
		rec, err := s.Load(ctx, id)
		if err != nil {
			logging.WarnWithContext(logger, "skipping unreadable move record", "record_skipped",
				logging.String(logging.FieldRecordID, id),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect or delete "+s.path(id)),
				logging.String(logging.FieldImpact, "record hidden from history and cannot be undone"),
			)
			continue
		}
		out = append(out, Summarize(rec))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *JSONStore) Save(ctx context.Context, rec *Record) error {
	if err := prepareForSave(rec); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Wrap(ErrFilesystem, "create logs directory", s.dir, err)
	}

	for seq := 0; seq <= maxSequence; seq++ {
		rec.ID = FormatID(rec.Timestamp, seq)
		created, err := s.create(rec)
		if err != nil {
			rec.ID = ""
			return err
		}
		if created {
			logging.WithContext(ensureContext(ctx), s.logger).Debug("move record saved",
				logging.String(logging.FieldRecordID, rec.ID),
				logging.Int("entries", rec.Len()),
				logging.String("path", s.path(rec.ID)),
			)
			return nil
		}
	}
	rec.ID = ""
	return Wrap(ErrFilesystem, "save record", s.dir, fmt.Errorf("more than %d records in one second", maxSequence+1))
}

// create writes rec to a temp file and links it into place. It reports false
// when the final name is already taken.
func (s *JSONStore) create(rec *Record) (bool, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode record: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, tempRecordPattern)
	if err != nil {
		return false, Wrap(ErrFilesystem, "save record", s.dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return false, Wrap(ErrFilesystem, "save record", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return false, Wrap(ErrFilesystem, "save record", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return false, Wrap(ErrFilesystem, "save record", tmpPath, err)
	}

	final := s.path(rec.ID)
	err = link(tmpPath, final)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrExist):
		return false, nil
	case errors.Is(err, errors.ErrUnsupported), errors.Is(err, fs.ErrPermission):
		// exFAT, FAT32 and some network mounts refuse hard links.
		return createExclusive(final, data)
	default:
		return false, Wrap(ErrFilesystem, "save record", final, err)
	}
}

// createExclusive writes data to path only if path does not exist yet.
func createExclusive(path string, data []byte) (bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, Wrap(ErrFilesystem, "save record", path, err)
	}
	_, err = f.Write(append(data, '\n'))
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return false, Wrap(ErrFilesystem, "save record", path, err)
	}
	return true, nil
}

func (s *JSONStore) Load(_ context.Context, id string) (*Record, error) {
	if !ValidID(id) {
		return nil, notFound("load record", id)
	}
	path := s.path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound("load record", id)
		}
		return nil, Wrap(ErrFilesystem, "load record", path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, Wrap(ErrRecordCorrupt, "load record", path, err)
	}
	// The file name is authoritative; Delete addresses records by it.
	rec.ID = id
	if rec.Timestamp.IsZero() {
		ts, _, err := ParseID(id)
		if err != nil {
			return nil, Wrap(ErrRecordCorrupt, "load record", path, err)
		}
		rec.Timestamp = ts
	}
	return &rec, nil
}

func (s *JSONStore) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return nil
	}
	path := s.path(id)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Wrap(ErrFilesystem, "delete record", path, err)
	}
	logging.WithContext(ensureContext(ctx), s.logger).Debug("move record deleted",
		logging.String(logging.FieldRecordID, id))
	return nil
}

func (s *JSONStore) Latest(ctx context.Context) (*Summary, error) {
	return latestOf(ctx, s)
}

// Owns reports whether path is a record file or an unfinished temp file of
// this store. Anything else in the directory belongs to the user.
func (s *JSONStore) Owns(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil || filepath.Dir(abs) != s.dir {
		return false
	}
	name := filepath.Base(abs)
	if _, ok := idFromFileName(name); ok {
		return true
	}
	matched, _ := filepath.Match(tempRecordPattern, name)
	return matched
}

func (s *JSONStore) Close() error { return nil }
