package collect

import (
	"path/filepath"
	"strings"
)

// bulletinExtensions are the file types audited when walking a directory.
var bulletinExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// IsBulletinFile reports whether name looks like a bulletin HTML file.
func IsBulletinFile(name string) bool {
	return bulletinExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsHidden reports whether a directory entry should be skipped.
func IsHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}
