// Package document parses bulletin HTML into a node tree and serializes it back.
// Transform stages mutate the tree in place; serialization happens once, at the
// pipeline boundary.
package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// shellPattern detects markup that makes the input a full document
// rather than a section fragment.
var shellPattern = regexp.MustCompile(`(?i)<(?:html|head|body|!doctype)[\s>]`)

// Document is a parsed bulletin.
type Document struct {
	Root *html.Node
	// Fragment is true when the input carried no document shell.
	Fragment bool
}

// Parse builds the tree for src. The HTML5 parser always produces a full
// html/head/body shell; Fragment records whether the input had one.
func Parse(src string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{Root: root, Fragment: !shellPattern.MatchString(src)}, nil
}

// Query wraps the tree for goquery traversal.
func (d *Document) Query() *goquery.Document {
	return goquery.NewDocumentFromNode(d.Root)
}

// Element returns the first element with the given tag, or nil.
func (d *Document) Element(a atom.Atom) *html.Node {
	return findElement(d.Root, a)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// HasDoctype reports whether the tree carries a doctype node.
func (d *Document) HasDoctype() bool {
	for c := d.Root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			return true
		}
	}
	return false
}

// EnsureDoctype inserts <!DOCTYPE html> when the tree has none.
// It reports whether a node was added.
func (d *Document) EnsureDoctype() bool {
	if d.HasDoctype() {
		return false
	}
	d.Root.InsertBefore(&html.Node{Type: html.DoctypeNode, Data: "html"}, d.Root.FirstChild)
	return true
}

// Render serializes the tree. With bodyOnly set, only the children of
// <body> are written, which is how section fragments round-trip.
func (d *Document) Render(bodyOnly bool) (string, error) {
	d.trimShellWhitespace()

	var buf bytes.Buffer
	var nodes []*html.Node
	if bodyOnly {
		if body := d.Element(atom.Body); body != nil {
			for c := body.FirstChild; c != nil; c = c.NextSibling {
				nodes = append(nodes, c)
			}
		}
	} else {
		for c := d.Root.FirstChild; c != nil; c = c.NextSibling {
			nodes = append(nodes, c)
		}
	}
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("rendering HTML: %w", err)
		}
	}
	return buf.String(), nil
}

// trimShellWhitespace drops whitespace-only text directly under <html>.
// The parser discards it on the next read, so keeping it would make
// a second pass produce different bytes.
func (d *Document) trimShellWhitespace() {
	root := d.Element(atom.Html)
	if root == nil {
		return
	}
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			root.RemoveChild(c)
		}
		c = next
	}
}
