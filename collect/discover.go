// Package collect expands command-line paths into the bulletin files to
// process. Files named explicitly are always kept; directories are walked
// breadth-first for .html and .htm files, skipping hidden entries.
package collect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Files returns the files to process for paths, in a stable order:
// arguments in the order given, directory contents sorted by name with
// each level finished before the next. Paths that cannot be read are
// reported together in the returned error; the remaining files are still
// returned.
func Files(paths []string) ([]string, error) {
	files := NewQueue()
	var errs []error

	for _, p := range paths {
		p = filepath.Clean(p)
		info, err := os.Stat(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		if !info.IsDir() {
			files.Add(p)
			continue
		}
		if err := walk(p, files); err != nil {
			errs = append(errs, err)
		}
	}

	var out []string
	for files.HasNext() {
		out = append(out, files.Next())
	}
	return out, errors.Join(errs...)
}

// walk adds the bulletin files under root to files, level by level.
func walk(root string, files *Queue) error {
	dirs := NewQueue()
	dirs.Add(root)

	var errs []error
	for dirs.HasNext() {
		dir := dirs.Next()
		entries, err := os.ReadDir(dir)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", dir, err))
			continue
		}
		for _, e := range entries {
			if IsHidden(e.Name()) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			switch {
			case e.IsDir():
				dirs.Add(path)
			case IsBulletinFile(e.Name()):
				files.Add(path)
			}
		}
	}
	return errors.Join(errs...)
}
