package fileutils

import (
	"fmt"
	"os"
	"sync"

	"fjacquet/budgea-salary/internal/logging"
)

// Workspace is a temporary directory holding the intermediate files of one
// run. Remove deletes it and everything left inside; it is safe to call more
// than once and from another goroutine (the interrupt handler).
type Workspace struct {
	dir    string
	logger logging.Logger
	once   sync.Once
	err    error
}

// NewWorkspace creates a fresh temporary directory.
func NewWorkspace(prefix string, logger logging.Logger) (*Workspace, error) {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	logger.Debug("Workspace created", logging.F(logging.FieldOutputFile, dir))
	return &Workspace{dir: dir, logger: logger}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// TempFile creates an empty file in the workspace and returns its path with a
// function removing it. The cleanup never fails; errors are logged.
func (w *Workspace) TempFile(pattern string) (string, func(), error) {
	f, err := os.CreateTemp(w.dir, pattern)
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create temporary file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		w.logger.WithError(err).Warn("Failed to close temporary file",
			logging.F(logging.FieldFile, name))
	}

	cleanup := func() {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			w.logger.WithError(err).Warn("Failed to remove temporary file",
				logging.F(logging.FieldFile, name))
		}
	}
	return name, cleanup, nil
}

// Remove deletes the workspace directory.
func (w *Workspace) Remove() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.dir)
		if w.err != nil {
			w.logger.WithError(w.err).Warn("Failed to remove workspace",
				logging.F(logging.FieldFile, w.dir))
		}
	})
	return w.err
}
