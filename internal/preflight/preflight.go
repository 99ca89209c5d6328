package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"shelve/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	Err    error
}

// RunAll executes the preflight checks for cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{checkLogsDir(cfg.Paths.LogsDir)}
}

// The logs directory is created on first save, so absence passes.
func checkLogsDir(path string) Result {
	const name = "Logs directory"
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

// CheckDirectoryAccess verifies that path is an existing directory the
// current user can list, enter, and write.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path), Err: err}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err), Err: err}
	}
	if !info.IsDir() {
		return Result{
			Name:   name,
			Detail: fmt.Sprintf("%s (error: is not a directory)", path),
			Err:    &fs.PathError{Op: "preflight", Path: path, Err: errors.New("not a directory")},
		}
	}
	if err := checkAccess(path); err != nil {
		return Result{
			Name:   name,
			Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err),
			Err:    &fs.PathError{Op: "access", Path: path, Err: err},
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
