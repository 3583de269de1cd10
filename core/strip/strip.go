// Package strip removes web-only document scope before a bulletin is mailed.
// It drops the doctype, the head, scripts, stylesheet links and inline
// event handlers. Everything else in the body is left in place.
package strip

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var handlerAttr = regexp.MustCompile(`^on[a-z]+$`)

// Result reports what was removed. Stylesheets holds the text of the
// <style> blocks that lived in the removed head, in document order.
type Result struct {
	Stylesheets []string
	Doctypes    int
	Heads       int
	Scripts     int
	Links       int
	Handlers    int
}

// Removed returns the total number of removed nodes and attributes.
func (r Result) Removed() int {
	return r.Doctypes + r.Heads + r.Scripts + r.Links + r.Handlers
}

// WebScope strips web-only markup from the tree rooted at root.
// Absent markup is not an error; the call is then a no-op.
func WebScope(root *html.Node) Result {
	var res Result

	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.DoctypeNode {
			root.RemoveChild(c)
			res.Doctypes++
		}
		c = next
	}

	doc := goquery.NewDocumentFromNode(root)

	heads := doc.Find("head")
	heads.Find("style").Each(func(_ int, s *goquery.Selection) {
		if css := s.Text(); strings.TrimSpace(css) != "" {
			res.Stylesheets = append(res.Stylesheets, css)
		}
	})
	res.Heads = heads.Length()
	heads.Remove()

	scripts := doc.Find("script")
	res.Scripts = scripts.Length()
	scripts.Remove()

	links := doc.Find("link").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return IsStylesheetLink(s.AttrOr("rel", ""))
	})
	res.Links = links.Length()
	links.Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		kept := node.Attr[:0]
		for _, a := range node.Attr {
			if IsEventHandler(a.Key) {
				res.Handlers++
				continue
			}
			kept = append(kept, a)
		}
		node.Attr = kept
	})

	return res
}

// IsStylesheetLink reports whether a link rel value names a stylesheet.
func IsStylesheetLink(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "stylesheet" {
			return true
		}
	}
	return false
}

// IsEventHandler reports whether an attribute name is an inline handler.
func IsEventHandler(key string) bool {
	return handlerAttr.MatchString(strings.ToLower(key))
}
