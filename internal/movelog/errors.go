package movelog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFilesystem marks unreadable directories, permission problems, and
	// failed moves or writes.
	ErrFilesystem = errors.New("filesystem error")
	// ErrRecordNotFound marks a lookup of a record that does not exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrRecordCorrupt marks a record that exists but cannot be parsed.
	ErrRecordCorrupt = errors.New("record corrupt")
	// ErrNothingToUndo is returned by Store.Latest when no parseable record
	// exists.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Error carries the operation and path behind a classified failure. Kind is
// one of the sentinels above and matches with errors.Is.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 4)
	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	}
	if op := strings.TrimSpace(e.Op); op != "" {
		parts = append(parts, op)
	}
	if path := strings.TrimSpace(e.Path); path != "" {
		parts = append(parts, path)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// ErrorKind returns a short classification used in structured logs and JSON
// output.
func (e *Error) ErrorKind() string {
	return KindOf(e)
}

// Wrap tags err with marker and records op and path. A nil marker defaults to
// ErrFilesystem.
func Wrap(marker error, op, path string, err error) error {
	if marker == nil {
		marker = ErrFilesystem
	}
	return &Error{Kind: marker, Op: op, Path: path, Err: err}
}

// KindOf classifies err for display. Unclassified errors report "internal".
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRecordNotFound):
		return "record_not_found"
	case errors.Is(err, ErrRecordCorrupt):
		return "record_corrupt"
	case errors.Is(err, ErrNothingToUndo):
		return "nothing_to_undo"
	case errors.Is(err, ErrFilesystem):
		return "filesystem"
	default:
		return "internal"
	}
}

func notFound(op, id string) error {
	return Wrap(ErrRecordNotFound, op, "", fmt.Errorf("no record with id %q", id))
}
