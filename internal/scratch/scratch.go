// Package scratch owns the private temporary directory of one run.
//
// Everything benchload generates for a run (currently the service-file alias)
// lives under a Dir, and Close removes it. Callers defer Close right after
// New, so the directory disappears on success, failure and cancellation alike.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const dirPattern = "benchload-"

// Dir is a scoped temporary directory. Close is idempotent.
type Dir struct {
	path string
	once sync.Once
	err  error
}

// New creates a private directory under parent. An empty parent means the
// system temporary directory.
func New(parent string) (*Dir, error) {
	path, err := os.MkdirTemp(parent, dirPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// WriteFile writes a file readable only by the current user and returns its
// absolute path. name must be a plain file name.
func (d *Dir) WriteFile(name string, content []byte) (string, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid scratch file name %q", name)
	}
	path := filepath.Join(d.path, name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Close removes the directory and its contents.
func (d *Dir) Close() error {
	d.once.Do(func() {
		if err := os.RemoveAll(d.path); err != nil {
			d.err = fmt.Errorf("failed to remove scratch directory %s: %w", d.path, err)
		}
	})
	return d.err
}
