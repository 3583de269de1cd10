// Package export renders normalized bulletins into the files that get
// published: the web page, the email body, a plain-text alternative, a
// Markdown digest and an archival PDF.
package export

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/bulletinpipe/core"
)

// DefaultTitle names bulletins that carry neither <title> nor <h1>.
const DefaultTitle = "Bulletin"

// Meta builds the export metadata for a normalized bulletin. The title is
// the document <title>, else the first <h1>, else DefaultTitle.
func Meta(html string, profile core.Profile, source string) core.BulletinMeta {
	return core.BulletinMeta{
		Title:   title(html),
		Profile: profile,
		Source:  source,
	}
}

func title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return DefaultTitle
	}
	for _, sel := range []string{"title", "h1"} {
		if t := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " "); t != "" {
			return t
		}
	}
	return DefaultTitle
}
