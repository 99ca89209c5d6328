package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"shelve/internal/category"
	"shelve/internal/fileutil"
	"shelve/internal/logging"
	"shelve/internal/movelog"
	"shelve/internal/preflight"
)

// Move is one planned file relocation.
type Move struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Category    string `json:"category"`
	Size        int64  `json:"size"`
}

// FileInfo describes a top-level file of a folder.
type FileInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modified"`
	Category string    `json:"category"`
}

// Options configures an Organizer. The zero value uses the default category
// table and overwrites destination collisions.
type Options struct {
	Table category.Table
	// FailOnConflict stops the run when a destination file already exists.
	FailOnConflict bool
	Logger         *slog.Logger
	// Now overrides the record clock in tests.
	Now func() time.Time
}

// Organizer moves files into category folders.
type Organizer struct {
	store     movelog.Store
	table     category.Table
	overwrite bool
	logger    *slog.Logger
	now       func() time.Time
}

// New constructs an Organizer that saves records to store.
func New(store movelog.Store, opts Options) *Organizer {
	table := opts.Table
	if len(table.Names()) == 0 {
		table = category.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Organizer{
		store:     store,
		table:     table,
		overwrite: !opts.FailOnConflict,
		logger:    logging.NewComponentLogger(opts.Logger, "organizer"),
		now:       now,
	}
}

// Table returns the active category table.
func (o *Organizer) Table() category.Table {
	return o.table
}

// ListFiles returns the regular files directly inside dir in name order.
// Symlinks to regular files are included.
func (o *Organizer) ListFiles(dir string) ([]FileInfo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, movelog.Wrap(movelog.ErrFilesystem, "list files", dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, movelog.Wrap(movelog.ErrFilesystem, "list files", abs, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(abs, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, FileInfo{
			Name:     entry.Name(),
			Path:     path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Category: o.table.Classify(entry.Name()),
		})
	}
	return files, nil
}

// Plan lists the moves Organize would make without side effects.
func (o *Organizer) Plan(dir string) ([]Move, error) {
	files, err := o.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	moves := make([]Move, 0, len(files))
	for _, f := range files {
		if o.store != nil && o.store.Owns(f.Path) {
			continue
		}
		folder := filepath.Dir(f.Path)
		moves = append(moves, Move{
			Source:      f.Path,
			Destination: filepath.Join(folder, f.Category, f.Name),
			Category:    f.Category,
			Size:        f.Size,
		})
	}
	return moves, nil
}

// Organize moves every top-level file of dir into its category folder and
// saves the resulting record. On a failed move the run stops; if anything
// moved first, the partial record is still saved and returned with the error.
func (o *Organizer) Organize(ctx context.Context, dir string) (*movelog.Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, movelog.Wrap(movelog.ErrFilesystem, "organize", dir, err)
	}
	if check := preflight.CheckDirectoryAccess("Target folder", abs); !check.Passed {
		return nil, movelog.Wrap(movelog.ErrFilesystem, "organize", abs, check.Err)
	}

	moves, err := o.Plan(abs)
	if err != nil {
		return nil, err
	}

	rec := &movelog.Record{
		RunID:     uuid.NewString(),
		Folder:    abs,
		Timestamp: o.now(),
	}
	ctx = logging.WithRunID(ctx, rec.RunID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("organize started",
		logging.String(logging.FieldFolder, abs),
		logging.Int("files", len(moves)),
	)

	start := time.Now()
	for i, mv := range moves {
		if err := ctx.Err(); err != nil {
			return o.abort(ctx, rec, mv, err)
		}
		if err := o.apply(mv); err != nil {
			return o.abort(ctx, rec, mv, err)
		}
		rec.Add(mv.Destination, mv.Source)
		logger.Debug("file moved",
			logging.String("source", mv.Source),
			logging.String("destination", mv.Destination),
			logging.String("category", mv.Category),
			logging.Int64("bytes", mv.Size),
			logging.Int("index", i+1),
		)
	}

	if err := o.store.Save(ctx, rec); err != nil {
		return nil, asFilesystem("save record", abs, err)
	}
	logger.Info("organize completed",
		logging.String(logging.FieldRecordID, rec.ID),
		logging.Int("moved", rec.Len()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return rec, nil
}

func (o *Organizer) apply(mv Move) error {
	if err := os.MkdirAll(filepath.Dir(mv.Destination), 0o755); err != nil {
		return err
	}
	return fileutil.Move(mv.Source, mv.Destination, o.overwrite)
}

// abort saves whatever already moved and returns the classified failure.
func (o *Organizer) abort(ctx context.Context, rec *movelog.Record, failed Move, cause error) (*movelog.Record, error) {
	logger := logging.WithContext(ctx, o.logger)
	runErr := movelog.Wrap(movelog.ErrFilesystem, "move file", failed.Source, cause)
	if errors.Is(cause, fileutil.ErrDestinationExists) {
		runErr = movelog.Wrap(movelog.ErrFilesystem, "move file", failed.Source,
			fmt.Errorf("%w (organize.on_conflict = \"fail\")", cause))
	}

	if rec.Len() == 0 {
		logging.WarnWithContext(logger, "organize aborted", "organize_failed",
			logging.String("source", failed.Source),
			logging.Error(cause),
			logging.String(logging.FieldErrorHint, "check permissions and free space in "+rec.Folder),
			logging.String(logging.FieldImpact, "no files were moved"),
		)
		return nil, runErr
	}

	if err := o.store.Save(ctx, rec); err != nil {
		logging.WarnWithContext(logger, "partial move record not saved", "record_save_failed",
			logging.Error(err),
			logging.Int("moved", rec.Len()),
			logging.String(logging.FieldImpact, "files already moved cannot be undone automatically"),
		)
		return nil, errors.Join(runErr, asFilesystem("save record", rec.Folder, err))
	}
	logging.WarnWithContext(logger, "organize aborted after partial progress", "organize_partial",
		logging.String(logging.FieldRecordID, rec.ID),
		logging.String("source", failed.Source),
		logging.Int("moved", rec.Len()),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "undo "+rec.ID+" to restore the files that moved"),
		logging.String(logging.FieldImpact, "folder is partially organized"),
	)
	return rec, runErr
}

func asFilesystem(op, path string, err error) error {
	if errors.Is(err, movelog.ErrFilesystem) {
		return err
	}
	return movelog.Wrap(movelog.ErrFilesystem, op, path, err)
}
