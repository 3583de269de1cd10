package export

import (
	"github.com/gaurav-prasanna/bulletinpipe/core"
)

// HTMLRenderer writes normalized HTML as-is.
type HTMLRenderer struct {
	Profile core.Profile
}

// NewHTMLRenderer creates an HTMLRenderer for the given profile.
func NewHTMLRenderer(p core.Profile) *HTMLRenderer {
	return &HTMLRenderer{Profile: p}
}

// Render returns the HTML as bytes.
func (r *HTMLRenderer) Render(html string, meta core.BulletinMeta) ([]byte, error) {
	return []byte(html), nil
}

// Extension keeps the two profiles apart on disk.
func (r *HTMLRenderer) Extension() string {
	if r.Profile == core.ProfileEmail {
		return "_email.html"
	}
	return ".html"
}
