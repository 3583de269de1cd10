package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/bulletinpipe/core"
	"golang.org/x/net/html"
)

var (
	inlineSpace = regexp.MustCompile(`[^\S\n]+`)
	invisible   = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}]+`)
)

// TextRenderer produces the plain-text alternative sent alongside the
// HTML email body.
type TextRenderer struct{}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render flattens html to text: one line per block element, table cells
// separated by spaces and absolute links spelled out after their text.
func (r *TextRenderer) Render(src string, meta core.BulletinMeta) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("script, style, head, title, meta, link").Remove()

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !strings.HasPrefix(href, "https://") && !strings.HasPrefix(href, "http://") {
			return
		}
		if strings.TrimSpace(s.Text()) == href {
			return
		}
		s.AfterNodes(textNode(" (" + href + ")"))
	})
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(textNode("\n"))
	})
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, li, tr, section, article").Each(func(_ int, s *goquery.Selection) {
		s.PrependNodes(textNode("\n"))
		s.AppendNodes(textNode("\n"))
	})
	doc.Find("td, th").Each(func(_ int, s *goquery.Selection) {
		s.PrependNodes(textNode(" "))
	})

	text := invisible.ReplaceAllString(doc.Text(), "")
	text = inlineSpace.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return []byte{}, nil
	}
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

// Extension returns the file extension for plain-text output.
func (r *TextRenderer) Extension() string {
	return ".txt"
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
