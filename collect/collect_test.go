package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("<p>x</p>"), 0o644))
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	assert.True(t, q.Add("a"))
	assert.True(t, q.Add("b"))
	assert.False(t, q.Add("a"))
	assert.Equal(t, 2, q.Len())

	var got []string
	for q.HasNext() {
		got = append(got, q.Next())
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRules(t *testing.T) {
	assert.True(t, IsBulletinFile("week.HTML"))
	assert.True(t, IsBulletinFile("week.htm"))
	assert.False(t, IsBulletinFile("week.css"))
	assert.True(t, IsHidden(".git"))
	assert.False(t, IsHidden("."))
}

func TestFilesWalksBreadthFirst(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.html"))
	touch(t, filepath.Join(root, "a.htm"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "archive", "2025", "old.html"))
	touch(t, filepath.Join(root, "archive", "z.html"))
	touch(t, filepath.Join(root, ".cache", "hidden.html"))

	got, err := Files([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.htm"),
		filepath.Join(root, "b.html"),
		filepath.Join(root, "archive", "z.html"),
		filepath.Join(root, "archive", "2025", "old.html"),
	}, got)
}

func TestFilesKeepsExplicitFilesAndDedupes(t *testing.T) {
	root := t.TempDir()
	txt := filepath.Join(root, "bulletin.txt")
	page := filepath.Join(root, "page.html")
	touch(t, txt)
	touch(t, page)

	got, err := Files([]string{txt, page, root, root + "/"})
	require.NoError(t, err)
	assert.Equal(t, []string{txt, page}, got)
}

func TestFilesReportsMissingPaths(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "page.html")
	touch(t, page)

	got, err := Files([]string{filepath.Join(root, "missing.html"), page})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.html")
	assert.Equal(t, []string{page}, got)
}
