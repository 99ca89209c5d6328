package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"shelve/internal/category"
	"shelve/internal/config"
	"shelve/internal/logging"
	"shelve/internal/movelog"
	"shelve/internal/organizer"
	"shelve/internal/restore"
)

// Service exposes list, organize, history, and undo operations.
type Service struct {
	store     movelog.Store
	table     category.Table
	organizer *organizer.Organizer
	engine    *restore.Engine
	logger    *slog.Logger
}

// New opens the configured record store and builds a Service around it.
// Callers must Close the service.
func New(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	store, err := movelog.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	return NewWithStore(cfg, store, logger), nil
}

// NewWithStore builds a Service around an already open store.
func NewWithStore(cfg *config.Config, store movelog.Store, logger *slog.Logger) *Service {
	table := TableFromConfig(cfg)
	failOnConflict := cfg != nil && cfg.ConflictFails()
	return &Service{
		store: store,
		table: table,
		organizer: organizer.New(store, organizer.Options{
			Table:          table,
			FailOnConflict: failOnConflict,
			Logger:         logger,
		}),
		engine: restore.NewEngine(store, restore.Options{
			FailOnConflict: failOnConflict,
			Logger:         logger,
		}),
		logger: logging.NewComponentLogger(logger, "api"),
	}
}

// TableFromConfig returns the configured category table, or the default
// table when none is configured.
func TableFromConfig(cfg *config.Config) category.Table {
	if cfg == nil || len(cfg.Categories) == 0 {
		return category.Default()
	}
	cats := make([]category.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		cats = append(cats, category.Category{Name: c.Name, Extensions: c.Extensions})
	}
	return category.New(cats)
}

// Close releases the record store.
func (s *Service) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Categories returns the active category table.
func (s *Service) Categories() category.Table {
	return s.table
}

// ListFiles lists the top-level files of path.
func (s *Service) ListFiles(path string) ([]organizer.FileInfo, error) {
	return s.organizer.ListFiles(path)
}

// PlanOrganize reports the moves Organize would make.
func (s *Service) PlanOrganize(path string) ([]organizer.Move, error) {
	return s.organizer.Plan(path)
}

// Organize sorts path into category folders and returns the saved record's
// summary. A partial run returns its summary alongside the error.
func (s *Service) Organize(ctx context.Context, path string) (movelog.Summary, error) {
	rec, err := s.organizer.Organize(ctx, path)
	if rec == nil {
		return movelog.Summary{}, err
	}
	return movelog.Summarize(rec), err
}

// UndoLatest undoes the newest record.
func (s *Service) UndoLatest(ctx context.Context) (restore.Report, error) {
	return s.engine.UndoLatest(ctx)
}

// UndoSpecific undoes the record with id.
func (s *Service) UndoSpecific(ctx context.Context, id string) (restore.Report, error) {
	return s.engine.UndoByID(ctx, id)
}

// ListRecordSummaries returns saved records, newest first.
func (s *Service) ListRecordSummaries(ctx context.Context) ([]movelog.Summary, error) {
	return s.store.List(ctx)
}

// Preview lists the files record id would restore.
func (s *Service) Preview(ctx context.Context, id string) ([]restore.PreviewLine, error) {
	return s.engine.Preview(ctx, id)
}

// ResolveRecordRef turns a user reference into a record ID. "#n" selects the
// n-th newest record (1-based); anything else is taken as an ID.
func (s *Service) ResolveRecordRef(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "#") {
		if ref == "" {
			return "", errors.New("record reference is empty")
		}
		return ref, nil
	}
	n, err := strconv.Atoi(ref[1:])
	if err != nil || n < 1 {
		return "", fmt.Errorf("invalid history number %q", ref)
	}
	list, err := s.store.List(ctx)
	if err != nil {
		return "", err
	}
	if n > len(list) {
		return "", movelog.Wrap(movelog.ErrRecordNotFound, "resolve record", "",
			fmt.Errorf("history has %d record(s), no entry %s", len(list), ref))
	}
	id := list[n-1].ID
	logging.WithContext(ctx, s.logger).Debug("resolved history reference",
		logging.String("ref", ref),
		logging.String(logging.FieldRecordID, id),
	)
	return id, nil
}
