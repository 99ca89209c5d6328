package movelog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"shelve/internal/config"
)

type storeFactory func(t *testing.T, dir string) Store

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"json": func(t *testing.T, dir string) Store {
			return NewJSONStore(dir, nil)
		},
		"sqlite": func(t *testing.T, dir string) Store {
			s, err := OpenSQLiteStore(context.Background(), dir, nil)
			if err != nil {
				t.Fatalf("OpenSQLiteStore: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, dir string, store Store)) {
	t.Helper()
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "logs")
			fn(t, dir, factory(t, dir))
		})
	}
}

func sampleRecord(folder string, ts time.Time, names ...string) *Record {
	rec := &Record{Folder: folder, Timestamp: ts, RunID: "run-" + folder}
	for _, name := range names {
		rec.Add(filepath.Join(folder, "Others", name), filepath.Join(folder, name))
	}
	return rec
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ string, store Store) {
		ctx := context.Background()
		ts := time.Date(2026, 10, 18, 14, 3, 22, 123456789, time.Local)
		rec := sampleRecord("/d", ts, "c.xyz", "a.bin", "b.bin")

		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if rec.ID != "2026-10-18_14-03-22" {
			t.Fatalf("unexpected id %q", rec.ID)
		}

		loaded, err := store.Load(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded.Folder != "/d" || loaded.RunID != rec.RunID || !loaded.Timestamp.Equal(ts) {
			t.Fatalf("unexpected loaded record %+v", loaded)
		}
		if loaded.Len() != 3 || loaded.Entries[0].NewPath != "/d/Others/c.xyz" || loaded.Entries[2].OriginalPath != "/d/b.bin" {
			t.Fatalf("entries not preserved in order: %+v", loaded.Entries)
		}
	})
}

func TestStoreSaveSameSecondGetsSuffix(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ string, store Store) {
		ctx := context.Background()
		ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
		first := sampleRecord("/a", ts, "x.bin")
		second := sampleRecord("/b", ts.Add(10*time.Millisecond), "y.bin")
		third := sampleRecord("/c", ts.Add(20*time.Millisecond), "z.bin")

		for _, rec := range []*Record{first, second, third} {
			if err := store.Save(ctx, rec); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}
		if first.ID != "2026-03-04_05-06-07" || second.ID != "2026-03-04_05-06-07-001" || third.ID != "2026-03-04_05-06-07-002" {
			t.Fatalf("unexpected ids %q %q %q", first.ID, second.ID, third.ID)
		}

		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 3 || list[0].ID != third.ID || list[2].ID != first.ID {
			t.Fatalf("expected newest first, got %+v", list)
		}
	})
}

func TestStoreListNewestFirstWithLabels(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ string, store Store) {
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local)
		older := sampleRecord("/home/u/Pictures", base, "a.bin")
		newer := sampleRecord("/home/u/Downloads", base.Add(time.Hour), "a.bin", "b.bin")
		if err := store.Save(ctx, newer); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := store.Save(ctx, older); err != nil {
			t.Fatalf("Save: %v", err)
		}

		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected two summaries, got %d", len(list))
		}
		if list[0].ID != newer.ID || list[0].Count != 2 || list[0].FolderName != "Downloads" {
			t.Fatalf("unexpected first summary %+v", list[0])
		}
		if list[0].Label != "Downloads · 2026-01-01 10-00-00 · 2 file(s)" {
			t.Fatalf("unexpected label %q", list[0].Label)
		}

		latest, err := store.Latest(ctx)
		if err != nil {
			t.Fatalf("Latest: %v", err)
		}
		if latest.ID != newer.ID {
			t.Fatalf("expected latest %q, got %q", newer.ID, latest.ID)
		}
	})
}

func TestStoreEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ string, store Store) {
		ctx := context.Background()
		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty list, got %+v", list)
		}
		if _, err := store.Latest(ctx); !errors.Is(err, ErrNothingToUndo) {
			t.Fatalf("expected ErrNothingToUndo, got %v", err)
		}
	})
}

func TestStoreLoadMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ string, store Store) {
		_, err := store.Load(context.Background(), "2020-01-01_00-00-00")
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ string, store Store) {
		ctx := context.Background()
		rec := sampleRecord("/d", time.Now(), "a.bin")
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		for range 2 {
			if err := store.Delete(ctx, rec.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
		}
		if _, err := store.Load(ctx, rec.ID); !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("expected record gone, got %v", err)
		}
		if err := store.Delete(ctx, "never-existed"); err != nil {
			t.Fatalf("Delete of unknown id: %v", err)
		}
	})
}

func TestJSONStoreSkipsCorruptAndReadsLegacy(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONStore(dir, nil)
	ctx := context.Background()

	legacy := `{"folder": "/old", "moved_files": {"/old/Images/a.jpg": "/old/a.jpg"}}`
	if err := os.WriteFile(filepath.Join(dir, "organizer_log_2024-05-06_07-08-09.json"), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "organizer_log_2025-01-01_00-00-00.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "2024-05-06_07-08-09" {
		t.Fatalf("expected only the legacy record, got %+v", list)
	}
	want := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	if !list[0].Timestamp.Equal(want) {
		t.Fatalf("legacy timestamp not taken from file name: %v", list[0].Timestamp)
	}

	if _, err := store.Load(ctx, "2025-01-01_00-00-00"); !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected ErrRecordCorrupt, got %v", err)
	}
}

func TestJSONStoreWritesPersistedFormat(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONStore(dir, nil)
	rec := sampleRecord("/d", time.Date(2026, 10, 18, 14, 3, 22, 0, time.Local), "c.xyz")
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "organizer_log_2026-10-18_14-03-22.json"))
	if err != nil {
		t.Fatalf("expected record file: %v", err)
	}
	for _, key := range []string{`"id"`, `"run_id"`, `"folder"`, `"timestamp"`, `"moved_files"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("expected key %s in %s", key, data)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, got %d entries", len(entries))
	}
}

func TestJSONStoreOwns(t *testing.T) {
	dir := t.TempDir()
	logs := filepath.Join(dir, "logs")
	store := NewJSONStore(logs, nil)

	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(logs, "organizer_log_2026-01-02_03-04-05.json"), true},
		{filepath.Join(logs, ".record-123456.tmp"), true},
		{filepath.Join(logs, "a.jpg"), false},
		{filepath.Join(logs, "notes.json"), false},
		{filepath.Join(logs, "sub", "organizer_log_2026-01-02_03-04-05.json"), false},
		{filepath.Join(dir, "logs-other", "organizer_log_2026-01-02_03-04-05.json"), false},
		{filepath.Join(dir, "a.txt"), false},
	}
	for _, tc := range cases {
		if got := store.Owns(tc.path); got != tc.want {
			t.Errorf("Owns(%s) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestJSONStoreSavesWithoutHardLinks(t *testing.T) {
	orig := link
	link = func(oldname, newname string) error {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: syscall.EPERM}
	}
	t.Cleanup(func() { link = orig })

	dir := t.TempDir()
	store := NewJSONStore(dir, nil)
	ctx := context.Background()
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)

	first := sampleRecord("/a", ts, "x.bin")
	second := sampleRecord("/b", ts, "y.bin")
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save second: %v", err)
	}
	if first.ID != "2026-03-04_05-06-07" || second.ID != "2026-03-04_05-06-07-001" {
		t.Fatalf("unexpected ids %q %q", first.ID, second.ID)
	}
	loaded, err := store.Load(ctx, second.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Folder != "/b" || loaded.Len() != 1 {
		t.Fatalf("unexpected record: %+v", loaded)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("expected two record files and no temp files, got %d entries", len(entries))
	}
}

func TestSQLiteStoreSkipsCorruptRows(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenSQLiteStore(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, err := store.db.ExecContext(ctx,
		"INSERT INTO records (id, run_id, folder, created_at) VALUES ('2025-01-01_00-00-00', '', '/bad', 'yesterday')"); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}
	good := sampleRecord("/good", time.Now(), "a.bin")
	if err := store.Save(ctx, good); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != good.ID {
		t.Fatalf("expected only the good record, got %+v", list)
	}
	if _, err := store.Load(ctx, "2025-01-01_00-00-00"); !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected ErrRecordCorrupt, got %v", err)
	}
	if !store.Owns(filepath.Join(dir, DatabaseName)) || !store.Owns(filepath.Join(dir, DatabaseName+"-wal")) {
		t.Fatal("expected database files to be owned")
	}
	if store.Owns(filepath.Join(dir, "a.txt")) {
		t.Fatal("unrelated file must not be owned")
	}
}

func TestSQLiteStoreReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store, err := OpenSQLiteStore(ctx, dir, nil)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	rec := sampleRecord("/d", time.Now(), "a.bin")
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLiteStore(ctx, dir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Load(ctx, rec.ID); err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogsDir = t.TempDir()

	store, err := Open(&cfg, nil)
	if err != nil {
		t.Fatalf("Open json: %v", err)
	}
	if _, ok := store.(*JSONStore); !ok {
		t.Fatalf("expected *JSONStore, got %T", store)
	}

	cfg.Store.Backend = config.BackendSQLite
	store, err = Open(&cfg, nil)
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected *SQLiteStore, got %T", store)
	}

	cfg.Store.Backend = "redis"
	if _, err := Open(&cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
