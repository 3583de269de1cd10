package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/bulletinpipe/core"
)

// Writer writes rendered exports to disk.
type Writer struct {
	OutputDir string
}

// NewWriter creates a Writer targeting outputDir, which defaults to the
// working directory and is created when missing.
func NewWriter(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data as <slug><ext>, the slug derived from the bulletin
// title (e.g. "Weekly Bulletin: Oct 3" -> weekly-bulletin-oct-3.pdf).
func (w *Writer) Write(meta core.BulletinMeta, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, Slug(meta.Title)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Slug turns a title into a lowercase file name. Runs of anything other
// than ASCII letters and digits collapse into a single hyphen.
func Slug(title string) string {
	var b strings.Builder
	hyphen := false
	for _, ch := range strings.ToLower(title) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return strings.ToLower(DefaultTitle)
	}
	return s
}
