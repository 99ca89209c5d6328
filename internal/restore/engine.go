package restore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shelve/internal/fileutil"
	"shelve/internal/logging"
	"shelve/internal/movelog"
)

// Options configures an Engine.
type Options struct {
	// FailOnConflict stops the undo when an original path is occupied.
	FailOnConflict bool
	Logger         *slog.Logger
}

// Engine replays move records in reverse.
type Engine struct {
	store     movelog.Store
	overwrite bool
	logger    *slog.Logger
}

// NewEngine constructs an Engine backed by store.
func NewEngine(store movelog.Store, opts Options) *Engine {
	return &Engine{
		store:     store,
		overwrite: !opts.FailOnConflict,
		logger:    logging.NewComponentLogger(opts.Logger, "restore"),
	}
}

// UndoLatest undoes the newest record. An empty store yields
// OutcomeNothingToUndo and a nil error.
func (e *Engine) UndoLatest(ctx context.Context) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	latest, err := e.store.Latest(ctx)
	if errors.Is(err, movelog.ErrNothingToUndo) {
		logging.WithContext(ctx, e.logger).Info("no move records to undo")
		return Report{Outcome: OutcomeNothingToUndo}, nil
	}
	if err != nil {
		return Report{}, err
	}
	return e.UndoByID(ctx, latest.ID)
}

// UndoByID loads and undoes the record with id.
func (e *Engine) UndoByID(ctx context.Context, id string) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rec, err := e.store.Load(ctx, id)
	if err != nil {
		return Report{RecordID: id}, err
	}
	return e.Undo(ctx, rec)
}

// Undo moves every present entry of rec back to its original path. The
// record is deleted only when no entry failed.
func (e *Engine) Undo(ctx context.Context, rec *movelog.Record) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if rec == nil {
		return Report{}, fmt.Errorf("undo: nil record")
	}
	if rec.RunID != "" {
		ctx = logging.WithRunID(ctx, rec.RunID)
	}
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldRecordID, rec.ID))

	report := Report{RecordID: rec.ID, Folder: rec.Folder, Outcome: OutcomePartial}
	logger.Info("undo started",
		logging.String(logging.FieldFolder, rec.Folder),
		logging.Int("entries", rec.Len()),
	)

	start := time.Now()
	for _, entry := range rec.Entries {
		if err := ctx.Err(); err != nil {
			return e.fail(logger, report, entry, err)
		}
		present, err := isRegularFile(entry.NewPath)
		if err != nil {
			return e.fail(logger, report, entry, err)
		}
		if !present {
			report.Skipped = append(report.Skipped, entry)
			logger.Debug("moved file missing, skipping", logging.String("path", entry.NewPath))
			continue
		}
		if err := e.restoreEntry(entry); err != nil {
			return e.fail(logger, report, entry, err)
		}
		report.Restored = append(report.Restored, entry)
	}

	if err := e.store.Delete(ctx, rec.ID); err != nil {
		logging.WarnWithContext(logger, "undo finished but record not deleted", "record_delete_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "record stays in history; undoing it again is harmless"),
		)
		return report, err
	}
	report.RecordDeleted = true
	report.Outcome = OutcomeRestored
	logger.Info("undo completed",
		logging.Int("restored", len(report.Restored)),
		logging.Int("skipped", len(report.Skipped)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

func (e *Engine) restoreEntry(entry movelog.Entry) error {
	if err := os.MkdirAll(filepath.Dir(entry.OriginalPath), 0o755); err != nil {
		return err
	}
	return fileutil.Move(entry.NewPath, entry.OriginalPath, e.overwrite)
}

func (e *Engine) fail(logger *slog.Logger, report Report, entry movelog.Entry, cause error) (Report, error) {
	err := movelog.Wrap(movelog.ErrFilesystem, "restore file", entry.NewPath, cause)
	report.Outcome = OutcomePartial
	report.Failed = &EntryFailure{Entry: entry, Err: err, Message: err.Error()}
	logging.WarnWithContext(logger, "undo stopped", "undo_failed",
		logging.String("path", entry.NewPath),
		logging.String("original", entry.OriginalPath),
		logging.Int("restored", len(report.Restored)),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "fix the problem and run undo again"),
		logging.String(logging.FieldImpact, "record kept; remaining files stay in category folders"),
	)
	return report, err
}

// Preview lists the files a record would restore, in record order.
func (e *Engine) Preview(ctx context.Context, id string) ([]PreviewLine, error) {
	rec, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	lines := make([]PreviewLine, 0, rec.Len())
	for _, entry := range rec.Entries {
		present, _ := isRegularFile(entry.NewPath)
		lines = append(lines, previewLine(entry, present))
	}
	return lines, nil
}

// isRegularFile follows symlinks; a missing path is not an error.
func isRegularFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
